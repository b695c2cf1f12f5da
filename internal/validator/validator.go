package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

var validate = playground.New(playground.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates `validate` tags and reports the first failing field as
// "<json name>: <rule>".
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return fmt.Errorf("%s: %s", first.Field(), first.Tag())
	}
	return err
}

func ValidateEmail(email string) error {
	if validate.Var(email, "required,email") != nil {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateCoordinates(latitude, longitude float64) error {
	if validate.Var(latitude, "min=-90,max=90") != nil || validate.Var(longitude, "min=-180,max=180") != nil {
		return ErrInvalidCoordinates
	}
	return nil
}
