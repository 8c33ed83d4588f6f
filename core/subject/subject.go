// Package subject manages the courses a student follows.
package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studytrack/core"
)

const DefaultStatus = "ongoing"

var ErrNotFound = core.NewNotFoundError("subject", "")

type Subject struct {
	ID         core.SubjectID `json:"id"`
	StudentID  core.StudentID `json:"student_id"`
	Name       string         `json:"name"`
	Semester   *int           `json:"semester"`
	Day        string         `json:"day,omitempty"`
	Attendance int            `json:"attendance"`
	ExamDate   string         `json:"exam_date,omitempty"` // YYYY-MM-DD
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"` // UTC
	UpdatedAt  time.Time      `json:"updated_at"` // UTC
}

type NewSubject struct {
	Name       string `json:"name" validate:"required,notblank"`
	Semester   *int   `json:"semester" validate:"omitempty,gte=1,lte=12"`
	Day        string `json:"day" validate:"weekday"`
	Attendance int    `json:"attendance" validate:"gte=0"`
	ExamDate   string `json:"exam_date" validate:"date"`
	Status     string `json:"status"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Day = core.CleanString(ns.Day, true /* lower */)
	ns.ExamDate = core.CleanString(ns.ExamDate)
	ns.Status = core.CleanString(ns.Status)
	return validate.Struct(ns)
}

// UpdateSubject holds a partial update; zero values keep the current data.
type UpdateSubject struct {
	Name       string `json:"name"`
	Semester   *int   `json:"semester" validate:"omitempty,gte=1,lte=12"`
	Day        string `json:"day" validate:"weekday"`
	Attendance *int   `json:"attendance" validate:"omitempty,gte=0"`
	ExamDate   string `json:"exam_date" validate:"date"`
	Status     string `json:"status"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Day = core.CleanString(us.Day, true /* lower */)
	us.ExamDate = core.CleanString(us.ExamDate)
	us.Status = core.CleanString(us.Status)
	return validate.Struct(us)
}

type QueryFilter struct {
	Day string `query:"day"`
}

func (qf *QueryFilter) Clean() {
	qf.Day = core.CleanString(qf.Day, true /* lower */)
}

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		QuerySubjects(ctx context.Context, studentID core.StudentID, filter QueryFilter, exec ...core.DBExecutor) ([]Subject, error)
		// GetSubjectsByIDs returns the subjects found, in the order of ids; unknown ids are skipped.
		GetSubjectsByIDs(ctx context.Context, studentID core.StudentID, ids []core.SubjectID, exec ...core.DBExecutor) ([]Subject, error)
		GetSubject(ctx context.Context, studentID core.StudentID, id core.SubjectID, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubject(ctx context.Context, studentID core.StudentID, id core.SubjectID, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, studentID core.StudentID, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	status := ns.Status
	if status == "" {
		status = DefaultStatus
	}
	return svc.repo.CreateSubject(ctx, Subject{
		ID:         core.SubjectID(core.NewID()),
		StudentID:  studentID,
		Name:       ns.Name,
		Semester:   ns.Semester,
		Day:        ns.Day,
		Attendance: ns.Attendance,
		ExamDate:   ns.ExamDate,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) Query(ctx context.Context, studentID core.StudentID, filter QueryFilter) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, studentID, filter)
}

func (svc *Service) Get(ctx context.Context, studentID core.StudentID, id core.SubjectID) (Subject, error) {
	return svc.repo.GetSubject(ctx, studentID, id)
}

func (svc *Service) Update(ctx context.Context, sub Subject, us UpdateSubject) (Subject, error) {
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.Semester != nil {
		sub.Semester = us.Semester
	}
	if us.Day != "" {
		sub.Day = us.Day
	}
	if us.Attendance != nil {
		sub.Attendance = *us.Attendance
	}
	if us.ExamDate != "" {
		sub.ExamDate = us.ExamDate
	}
	if us.Status != "" {
		sub.Status = us.Status
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

// Delete leaves timetables and study tasks pointing at the subject untouched.
func (svc *Service) Delete(ctx context.Context, studentID core.StudentID, id core.SubjectID) error {
	return svc.repo.DeleteSubject(ctx, studentID, id)
}
