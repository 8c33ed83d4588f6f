package student

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studytrack/core"
)

func TestNewStudent_Validate(t *testing.T) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	newStudent := func(pwd string) NewStudent {
		return NewStudent{Name: "Ada Lovelace", Email: "ada@test.cd", Password: pwd, PasswordConfirm: pwd}
	}

	tests := []struct {
		name    string
		ns      NewStudent
		wantMsg string // translated message of the password error, if any
	}{
		{name: "too short", ns: newStudent("Sh0rt&"), wantMsg: pwdMinLenText},
		{name: "whitespace", ns: newStudent("Str0ng &Secret"), wantMsg: pwdNoSpaceText},
		{name: "all numeric", ns: newStudent("1234567890"), wantMsg: pwdNotAllNumText},
		{name: "no special character", ns: newStudent("Str0ngSecret"), wantMsg: pwdComplexityText},
		{name: "no digit", ns: newStudent("Strong&Secret"), wantMsg: pwdComplexityText},
		{name: "similar to name", ns: newStudent("Ad4&Lovelace"), wantMsg: pwdAttrSimText},
		{name: "similar to email", ns: newStudent("Ada@test.cd1"), wantMsg: pwdAttrSimText},
		{name: "valid", ns: newStudent("Str0ng&Secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok || len(verrs) != 1 {
				t.Fatalf("Validate() error = %v, want one validation error", err)
			}
			if got := verrs[0].Translate(translator); got != tt.wantMsg {
				t.Errorf("Validate() message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNewStudent_Validate_cleans(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	ns := NewStudent{Name: "  Ada ", Email: " ADA@Test.cd ", Password: "Str0ng&Secret", PasswordConfirm: "Str0ng&Secret"}
	if err := ns.Validate(validate); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}
	if ns.Name != "Ada" || ns.Email != "ada@test.cd" {
		t.Errorf("Validate() did not clean: %q %q", ns.Name, ns.Email)
	}
}
