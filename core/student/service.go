package student

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("student", "")
	ErrEmailExists        = core.NewConflictError("email", "a student with this email already exists")
	ErrInvalidCredentials = core.NewValidationError(errors.New("invalid credentials"))
	ErrInvalidResetToken  = core.NewValidationError(errors.New("invalid or expired password reset link"))
)

type (
	GetFilter struct {
		ID    core.StudentID
		Email string
	}

	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if another student uses email.
		CheckEmailUniqueness(ctx context.Context, email string, excluded core.StudentID, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		GetStudent(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudent(ctx context.Context, id core.StudentID, exec ...core.DBExecutor) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, tokens: newTokenGenerator(conf)}
}

// Register creates a Student from validated data and sends the welcome email.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, ns.Email, ""); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	st := Student{
		ID:        core.StudentID(core.NewID()),
		Name:      ns.Name,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.Profile != nil {
		st.Profile = *ns.Profile
	}
	if err := st.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	st, err := svc.repo.CreateStudent(ctx, st)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}

	svc.sendWelcomeMail(st)
	return st, nil
}

func (svc *Service) sendWelcomeMail(st Student) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject:      "Welcome to StudyTrack",
		TemplateName: "welcome",
		TemplateData: st,
	})
}

// Authenticate returns the student matching email and password.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Student, error) {
	st, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, errors.Wrap(err, "finding student by email")
	}
	if err = st.CheckPassword(pwd); err != nil {
		return Student{}, ErrInvalidCredentials
	}
	return st, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id core.StudentID) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// Update applies validated changes; the password is only re-hashed when a new one is supplied.
func (svc *Service) Update(ctx context.Context, st Student, us UpdateStudent) (Student, error) {
	if us.Email != st.Email {
		if err := svc.repo.CheckEmailUniqueness(ctx, us.Email, st.ID); err != nil {
			return Student{}, err
		}
	}

	st.Name = us.Name
	st.Email = us.Email
	if us.Profile != nil {
		st.Profile = *us.Profile
	}
	if us.Metrics != nil {
		st.Metrics = *us.Metrics
	}
	if us.Password != "" {
		if err := st.SetPassword(us.Password); err != nil {
			return Student{}, errors.Wrap(err, "hashing password")
		}
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

// SetPassword replaces the password of the student with the given email, skipping the policy.
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (Student, error) {
	st, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Student{}, err
	}
	if err = st.SetPassword(pwd); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

// RequestPasswordReset emails a password reset link to the student holding email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	st, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject:      "Reset your password",
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  st.Name,
			"UID":   EncodeUID(st.ID),
			"Token": svc.tokens.makeToken(st),
		},
	})
	return nil
}

// ResetPassword sets a new password once the uid and token of the reset link check out.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) (Student, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return Student{}, ErrInvalidResetToken
	}
	st, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, ErrInvalidResetToken
		}
		return Student{}, errors.Wrap(err, "getting student")
	}
	if err = svc.tokens.verifyToken(st, rp.Token); err != nil {
		return Student{}, ErrInvalidResetToken
	}

	if err = st.SetPassword(rp.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

// Delete removes the student only; records referencing it are left dangling.
func (svc *Service) Delete(ctx context.Context, id core.StudentID) error {
	return svc.repo.DeleteStudent(ctx, id)
}
