package auth

import (
	"direct-chat/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials as received from REGISTER. Usernames are embedded in
// colon, comma and pipe delimited responses, so those runes are banned.
type Credentials struct {
	Username string `validate:"required,max=32,printascii,excludesall=:0x7C0x2C"`
	Password string `validate:"required,max=72"`
}

func ValidateCredentials(c Credentials) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		if first.Field() == "Username" {
			return fmt.Errorf("%w: failed on %q", errors.ErrInvalidUsername, first.Tag())
		}
		return fmt.Errorf("%w: failed on %q", errors.ErrInvalidPassword, first.Tag())
	}
	return err
}
