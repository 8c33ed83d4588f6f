// Package inmemdb implements every repository in memory. Used in development and tests.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/myday"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/student"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/core/timetable"
)

type (
	DB struct {
		txMu sync.Mutex

		student    *studentTable
		subject    *subjectTable
		goal       *goalTable
		actionPlan *actionPlanTable
		task       *taskTable
		progress   *progressTable
		timetable  *timetableTable
		myDay      *myDayTable
	}

	studentTable struct {
		sync.RWMutex
		table map[core.StudentID]*student.Student
	}

	subjectTable struct {
		sync.RWMutex
		table map[core.SubjectID]*subject.Subject
	}

	goalTable struct {
		sync.RWMutex
		table map[core.GoalID]*goal.Goal
	}

	actionPlanTable struct {
		sync.RWMutex
		table map[core.ActionPlanID]*actionplan.ActionPlan
	}

	taskTable struct {
		sync.RWMutex
		table map[core.TaskID]*task.Task
	}

	progressKey struct {
		studentID core.StudentID
		goalID    core.GoalID
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]*progress.Progress
	}

	timetableTable struct {
		sync.RWMutex
		table map[core.TimetableID]*timetable.Timetable
	}

	myDayKey struct {
		studentID core.StudentID
		date      string
	}

	myDayTable struct {
		sync.RWMutex
		table map[myDayKey]*myday.MyDay
	}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{
		student:    &studentTable{table: make(map[core.StudentID]*student.Student)},
		subject:    &subjectTable{table: make(map[core.SubjectID]*subject.Subject)},
		goal:       &goalTable{table: make(map[core.GoalID]*goal.Goal)},
		actionPlan: &actionPlanTable{table: make(map[core.ActionPlanID]*actionplan.ActionPlan)},
		task:       &taskTable{table: make(map[core.TaskID]*task.Task)},
		progress:   &progressTable{table: make(map[progressKey]*progress.Progress)},
		timetable:  &timetableTable{table: make(map[core.TimetableID]*timetable.Timetable)},
		myDay:      &myDayTable{table: make(map[myDayKey]*myday.MyDay)},
	}
}

// WithinTx serializes units of work. There is no rollback:
// writes made by fn before it fails are kept.
func (db *DB) WithinTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(nil)
}

// Repositories bundles every repository backed by db.
type Repositories struct {
	Students    *StudentRepository
	Subjects    *SubjectRepository
	Goals       *GoalRepository
	ActionPlans *ActionPlanRepository
	Tasks       *TaskRepository
	Progress    *ProgressRepository
	Timetables  *TimetableRepository
	MyDays      *MyDayRepository
}

func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Students:    NewStudentRepository(db),
		Subjects:    NewSubjectRepository(db),
		Goals:       NewGoalRepository(db),
		ActionPlans: NewActionPlanRepository(db),
		Tasks:       NewTaskRepository(db),
		Progress:    NewProgressRepository(db),
		Timetables:  NewTimetableRepository(db),
		MyDays:      NewMyDayRepository(db),
	}
}
