package identity

import (
	"github.com/go-playground/validator/v10"

	"github.com/cs-students/markis/core"
)

// User is an account living in the external identity service. It is never
// persisted locally; the service is the single source of truth.
type User struct {
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
	Admin       bool   `json:"is_admin"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,max=100,alphanum_"`
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=64"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) DisplayName() string {
	return nu.FirstName + " " + nu.LastName
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return checkUniqueness(nu.Username, nu.Email, svc)
}

func checkUniqueness(uname, email string, svc Service) error {
	exists, err := svc.UserExists(uname)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}

	exists, err = svc.EmailExists(email)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return nil
}
