package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/studytrack/core"
)

// Profile holds the academic and career details a student fills in.
type Profile struct {
	Branch           string   `json:"branch"`
	Semester         int      `json:"semester" validate:"gte=0,lte=12"`
	CollegeName      string   `json:"college_name"`
	EnrollmentNumber string   `json:"enrollment_number"`
	LastSemSGPA      float64  `json:"last_sem_sgpa" validate:"gte=0,lte=10"`
	MSC1             float64  `json:"msc1" validate:"gte=0"`
	MSC2             float64  `json:"msc2" validate:"gte=0"`
	LastYearResult   string   `json:"last_year_result"`
	Attendance       float64  `json:"attendance" validate:"gte=0,lte=100"`
	Backlogs         int      `json:"backlogs" validate:"gte=0"`
	CareerGoal       string   `json:"career_goal"`
	TechnicalSkills  []string `json:"technical_skills"`
	SoftSkills       []string `json:"soft_skills"`
	Certifications   string   `json:"certifications"`
	Projects         string   `json:"projects"`
	LinkedIn         string   `json:"linkedin" validate:"omitempty,url"`
	GitHub           string   `json:"github" validate:"omitempty,url"`
	Achievements     string   `json:"achievements"`
	Hobbies          string   `json:"hobbies"`
}

func (p *Profile) clean() {
	p.Branch = core.CleanString(p.Branch)
	p.CollegeName = core.CleanString(p.CollegeName)
	p.EnrollmentNumber = core.CleanString(p.EnrollmentNumber)
	p.LastYearResult = core.CleanString(p.LastYearResult)
	p.CareerGoal = core.CleanString(p.CareerGoal)
	p.TechnicalSkills = core.CleanStrings(p.TechnicalSkills)
	p.SoftSkills = core.CleanStrings(p.SoftSkills)
	p.LinkedIn = core.CleanString(p.LinkedIn)
	p.GitHub = core.CleanString(p.GitHub)
}

// Metrics are display figures set by the client; nothing on the server computes them.
type Metrics struct {
	AcademicProgress  int `json:"academic_progress" validate:"gte=0,lte=100"`
	SkillProgress     int `json:"skill_progress" validate:"gte=0,lte=100"`
	ProductivityScore int `json:"productivity_score" validate:"gte=0,lte=100"`
	TaskStreak        int `json:"task_streak" validate:"gte=0"`
}

type Student struct {
	ID           core.StudentID `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash []byte         `json:"-"`
	Profile      Profile        `json:"profile"`
	Metrics      Metrics        `json:"metrics"`
	CreatedAt    time.Time      `json:"created_at"` // UTC
	UpdatedAt    time.Time      `json:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Person is the identity attached to log entries.
func (s Student) Person() core.Person {
	return core.Person{ID: string(s.ID), Name: s.Name, Email: s.Email}
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name            string   `json:"name" validate:"required,notblank"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Profile         *Profile `json:"profile"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	if ns.Profile != nil {
		ns.Profile.clean()
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty strings and nil sections keep the current values.
type UpdateStudent struct {
	Name            string   `json:"name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	Profile         *Profile `json:"profile"`
	Metrics         *Metrics `json:"metrics"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if us.Profile != nil {
		us.Profile.clean()
	}
	return validate.Struct(us)
}

// ResetPassword confirms a password reset requested by email.
type ResetPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.UID = core.CleanString(rp.UID)
	rp.Token = core.CleanString(rp.Token)
	return validate.Struct(rp)
}
