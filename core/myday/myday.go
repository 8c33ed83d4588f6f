// Package myday records how a student spent each day and scores its productivity.
package myday

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

// MaxHours is the most a day can hold.
const MaxHours = 24

var ErrNotFound = core.NewNotFoundError("my day", "")

type Category struct {
	Name  string  `json:"name" validate:"required,notblank"`
	Hours float64 `json:"hours" validate:"gte=0,lte=24"`
	Note  string  `json:"note,omitempty"`
}

type MyDay struct {
	ID                core.MyDayID   `json:"id"`
	StudentID         core.StudentID `json:"student_id"`
	Date              string         `json:"date"` // YYYY-MM-DD, local to the configured offset
	Categories        []Category     `json:"categories"`
	TotalHours        float64        `json:"total_hours"`
	ProductivityScore int            `json:"productivity_score"`
	Mood              string         `json:"mood"`
	CreatedAt         time.Time      `json:"created_at"` // UTC
	UpdatedAt         time.Time      `json:"updated_at"` // UTC
}

type NewMyDay struct {
	Categories []Category `json:"categories" validate:"dive"`
	Mood       string     `json:"mood"`
}

func (nd *NewMyDay) Validate(validate *validator.Validate) error {
	nd.Mood = core.CleanString(nd.Mood)
	for i := range nd.Categories {
		nd.Categories[i].Name = core.CleanString(nd.Categories[i].Name)
		nd.Categories[i].Note = core.CleanString(nd.Categories[i].Note)
	}
	if err := validate.Struct(nd); err != nil {
		return err
	}
	if total, _ := Score(nd.Categories); total > MaxHours {
		return core.NewValidationError(nil, core.FieldError{
			Field: "categories",
			Error: fmt.Sprintf("a day cannot hold more than %d hours (got %g)", MaxHours, total),
		})
	}
	return nil
}

type (
	Repository interface {
		// UpsertMyDay creates or replaces the record keyed by (StudentID, Date).
		UpsertMyDay(ctx context.Context, d MyDay, exec ...core.DBExecutor) (MyDay, error)
		GetMyDay(ctx context.Context, studentID core.StudentID, date string, exec ...core.DBExecutor) (MyDay, error)
		// QueryMyDays returns the records with from <= date <= to, oldest first.
		QueryMyDays(ctx context.Context, studentID core.StudentID, from, to string, exec ...core.DBExecutor) ([]MyDay, error)
	}

	Service struct {
		repo Repository
		cal  *core.Calendar
	}
)

func NewService(repo Repository, cal *core.Calendar) *Service {
	return &Service{repo: repo, cal: cal}
}

// Log scores the categories and overwrites today's record.
func (svc *Service) Log(ctx context.Context, studentID core.StudentID, nd NewMyDay) (MyDay, error) {
	categories := nd.Categories
	if categories == nil {
		categories = []Category{}
	}
	total, score := Score(categories)
	now := time.Now().UTC()
	d, err := svc.repo.UpsertMyDay(ctx, MyDay{
		ID:                core.MyDayID(core.NewID()),
		StudentID:         studentID,
		Date:              svc.cal.Today(),
		Categories:        categories,
		TotalHours:        total,
		ProductivityScore: score,
		Mood:              nd.Mood,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return MyDay{}, errors.Wrap(err, "saving my day")
	}
	return d, nil
}

func (svc *Service) Today(ctx context.Context, studentID core.StudentID) (MyDay, error) {
	return svc.repo.GetMyDay(ctx, studentID, svc.cal.Today())
}

func (svc *Service) GetByDate(ctx context.Context, studentID core.StudentID, date string) (MyDay, error) {
	date, err := core.ParseDate(date)
	if err != nil {
		return MyDay{}, core.NewValidationError(err)
	}
	return svc.repo.GetMyDay(ctx, studentID, date)
}

// Week returns the records of the last 7 local days, oldest first. Missing days are omitted.
func (svc *Service) Week(ctx context.Context, studentID core.StudentID) ([]MyDay, error) {
	days := svc.cal.LastDays(7)
	return svc.repo.QueryMyDays(ctx, studentID, days[0], days[len(days)-1])
}
