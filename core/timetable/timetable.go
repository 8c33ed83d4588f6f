// Package timetable stores the weekly schedule of subjects and turns the
// current day's schedule into daily study tasks.
package timetable

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
)

var (
	ErrNotFound  = core.NewNotFoundError("timetable", "")
	ErrDayExists = core.NewConflictError("day", "a timetable already exists for this day")
)

// StudyTaskSuffix is appended to the subject name in generated task titles.
const StudyTaskSuffix = " Daily Study"

type Timetable struct {
	ID         core.TimetableID `json:"id"`
	StudentID  core.StudentID   `json:"student_id"`
	Day        string           `json:"day"`
	SubjectIDs []core.SubjectID `json:"subject_ids"`
	CreatedAt  time.Time        `json:"created_at"` // UTC
	UpdatedAt  time.Time        `json:"updated_at"` // UTC
}

// Populated is a timetable along with the subjects it references that still exist.
type Populated struct {
	Timetable
	Subjects []subject.Subject `json:"subjects"`
}

type NewTimetable struct {
	Day        string   `json:"day" validate:"required,weekday"`
	SubjectIDs []string `json:"subject_ids" validate:"dive,notblank"`
}

func (nt *NewTimetable) Validate(validate *validator.Validate) error {
	nt.Day = core.CleanString(nt.Day, true /* lower */)
	return validate.Struct(nt)
}

type UpdateTimetable struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,dive,notblank"`
}

func (ut *UpdateTimetable) Validate(validate *validator.Validate) error {
	return validate.Struct(ut)
}

type (
	Repository interface {
		// CreateTimetable returns ErrDayExists when the student already has one for the day.
		CreateTimetable(ctx context.Context, tt Timetable, exec ...core.DBExecutor) (Timetable, error)
		QueryTimetables(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]Timetable, error)
		GetTimetable(ctx context.Context, studentID core.StudentID, id core.TimetableID, exec ...core.DBExecutor) (Timetable, error)
		GetTimetableByDay(ctx context.Context, studentID core.StudentID, day string, exec ...core.DBExecutor) (Timetable, error)
		UpdateTimetable(ctx context.Context, tt Timetable, exec ...core.DBExecutor) (Timetable, error)
		DeleteTimetable(ctx context.Context, studentID core.StudentID, id core.TimetableID, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		subjects subject.Repository
		goals    goal.Repository
		tasks    task.Repository
		sync     *progress.Synchronizer
		cal      *core.Calendar
	}
)

func NewService(
	repo Repository,
	subjects subject.Repository,
	goals goal.Repository,
	tasks task.Repository,
	sync *progress.Synchronizer,
	cal *core.Calendar,
) *Service {
	return &Service{repo: repo, subjects: subjects, goals: goals, tasks: tasks, sync: sync, cal: cal}
}

// resolveSubjects checks that every id is a subject of the student, keeping their order.
func (svc *Service) resolveSubjects(ctx context.Context, studentID core.StudentID, ids []string) ([]core.SubjectID, error) {
	subjectIDs := make([]core.SubjectID, 0, len(ids))
	seen := make(map[core.SubjectID]bool, len(ids))
	for _, id := range ids {
		sid := core.SubjectID(core.CleanString(id))
		if !seen[sid] {
			seen[sid] = true
			subjectIDs = append(subjectIDs, sid)
		}
	}
	found, err := svc.subjects.GetSubjectsByIDs(ctx, studentID, subjectIDs)
	if err != nil {
		return nil, errors.Wrap(err, "getting subjects")
	}
	if len(found) != len(subjectIDs) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "subject_ids", Error: "unknown subject"})
	}
	return subjectIDs, nil
}

func (svc *Service) populate(ctx context.Context, tt Timetable) (Populated, error) {
	subjects, err := svc.subjects.GetSubjectsByIDs(ctx, tt.StudentID, tt.SubjectIDs)
	if err != nil {
		return Populated{}, errors.Wrap(err, "getting subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return Populated{Timetable: tt, Subjects: subjects}, nil
}

func (svc *Service) Create(ctx context.Context, studentID core.StudentID, nt NewTimetable) (Populated, error) {
	subjectIDs, err := svc.resolveSubjects(ctx, studentID, nt.SubjectIDs)
	if err != nil {
		return Populated{}, err
	}
	now := time.Now().UTC()
	tt, err := svc.repo.CreateTimetable(ctx, Timetable{
		ID:         core.TimetableID(core.NewID()),
		StudentID:  studentID,
		Day:        nt.Day,
		SubjectIDs: subjectIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Populated{}, err
	}
	return svc.populate(ctx, tt)
}

// Query returns the student's timetables in weekday order, subjects populated.
func (svc *Service) Query(ctx context.Context, studentID core.StudentID) ([]Populated, error) {
	tts, err := svc.repo.QueryTimetables(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetables")
	}
	byDay := make(map[string]Timetable, len(tts))
	for _, tt := range tts {
		byDay[tt.Day] = tt
	}
	res := make([]Populated, 0, len(tts))
	for _, day := range core.Weekdays {
		tt, ok := byDay[day]
		if !ok {
			continue
		}
		p, err := svc.populate(ctx, tt)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func (svc *Service) Get(ctx context.Context, studentID core.StudentID, id core.TimetableID) (Timetable, error) {
	return svc.repo.GetTimetable(ctx, studentID, id)
}

func (svc *Service) GetByDay(ctx context.Context, studentID core.StudentID, day string) (Populated, error) {
	tt, err := svc.repo.GetTimetableByDay(ctx, studentID, core.CleanString(day, true /* lower */))
	if err != nil {
		return Populated{}, err
	}
	return svc.populate(ctx, tt)
}

func (svc *Service) Update(ctx context.Context, tt Timetable, ut UpdateTimetable) (Populated, error) {
	subjectIDs, err := svc.resolveSubjects(ctx, tt.StudentID, ut.SubjectIDs)
	if err != nil {
		return Populated{}, err
	}
	tt.SubjectIDs = subjectIDs
	tt.UpdatedAt = time.Now().UTC()
	if tt, err = svc.repo.UpdateTimetable(ctx, tt); err != nil {
		return Populated{}, err
	}
	return svc.populate(ctx, tt)
}

func (svc *Service) Delete(ctx context.Context, studentID core.StudentID, id core.TimetableID) error {
	return svc.repo.DeleteTimetable(ctx, studentID, id)
}

// SyncToday makes sure each subject scheduled today has its study task for today,
// linked to the student's first academic goal if there is one.
// Creation goes through the (student, subject, date) unique key, so concurrent calls converge.
// It returns the tasks created by this call.
func (svc *Service) SyncToday(ctx context.Context, studentID core.StudentID) ([]task.Task, error) {
	tt, err := svc.repo.GetTimetableByDay(ctx, studentID, svc.cal.Weekday())
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting today's timetable")
	}
	subjects, err := svc.subjects.GetSubjectsByIDs(ctx, studentID, tt.SubjectIDs)
	if err != nil {
		return nil, errors.Wrap(err, "getting subjects")
	}
	if len(subjects) == 0 {
		return nil, nil
	}

	var goalID *core.GoalID
	academic, err := svc.goals.QueryGoals(ctx, studentID, goal.QueryFilter{Type: goal.TypeAcademic})
	if err != nil {
		return nil, errors.Wrap(err, "querying academic goals")
	}
	if len(academic) > 0 {
		goalID = &academic[0].ID
	}

	today := svc.cal.Today()
	now := time.Now().UTC()
	created := make([]task.Task, 0, len(subjects))
	for _, sub := range subjects {
		subjectID := sub.ID
		t, ok, err := svc.tasks.CreateTaskIfAbsent(ctx, task.Task{
			ID:        core.TaskID(core.NewID()),
			StudentID: studentID,
			GoalID:    goalID,
			SubjectID: &subjectID,
			StudyDate: today,
			Title:     sub.Name + StudyTaskSuffix,
			DueDate:   today,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return created, errors.Wrapf(err, "creating study task for %q", sub.Name)
		}
		if ok {
			created = append(created, t)
		}
	}

	if len(created) > 0 && goalID != nil {
		return created, svc.sync.Sync(ctx, studentID, *goalID)
	}
	return created, nil
}
