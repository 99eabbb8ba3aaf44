package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/robalobadob/cryptix/internal/auth"
)

// validate is shared by every handler that decodes a request body.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return auth.ValidUsername(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.ValidPassword(fl.Field().String())
	})
	return v
}

var tagMessages = map[string]string{
	"required": "is required",
	"username": "must be at least 5 characters, start with a letter, include upper and lower case, and only use letters or numbers",
	"password": "must be at least 5 characters and include a letter, a number, and one of $ % * @",
	"uuid":     "must be a game id",
	"max":      "is too long",
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		m, ok := tagMessages[fe.Tag()]
		if !ok {
			m = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
		msgs = append(msgs, fe.Field()+" "+m)
	}
	return strings.Join(msgs, "; ")
}
