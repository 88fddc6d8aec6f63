package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom rules on gin's validator engine and
// makes field errors report json names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = register(v)
	})
	return registerErr
}

func register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// ValidUsername reports whether s only uses letters, digits and @.+-_.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// BindingErrors turns a ShouldBind error into per-field messages.
func BindingErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		m := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := fieldName(fe)
			m[name] = append(m[name], messageFor(fe))
		}
		return m
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{typeErr.Field: {fmt.Sprintf("must be a %s", typeErr.Type)}}
	}

	return map[string][]string{"non_field_errors": {"malformed request body"}}
}

func fieldName(fe validator.FieldError) string {
	// Namespace is Struct.field[0]; drop the struct prefix.
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	case "slug":
		return "may contain only letters, digits, hyphens and underscores"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fe.Error()
	}
}
