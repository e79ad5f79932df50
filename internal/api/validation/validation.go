// Package validation registers the custom binding tags and turns binding
// failures into field keyed error maps.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key for errors not tied to one field.
const NonFieldErrors = "non_field_errors"

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ErrReservedUsername is returned for "me", which collides with /users/me/.
var ErrReservedUsername = errors.New("Username 'me' is not allowed.")

var errUsernameChars = errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")

// now is swapped in tests.
var now = time.Now

// Errors maps a JSON field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, " ")))
	}
	return strings.Join(parts, "; ")
}

// CheckUsername applies the username rules outside of binding.
func CheckUsername(username string) error {
	if strings.EqualFold(username, "me") {
		return ErrReservedUsername
	}
	if !usernamePattern.MatchString(username) {
		return errUsernameChars
	}
	return nil
}

// CheckYear reports whether year lies in [0, current year].
func CheckYear(year int) bool {
	return year >= 0 && year <= now().Year()
}

var registerOnce sync.Once

// Register installs the custom tags on gin's validator. Safe to call more than
// once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return CheckUsername(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("pastyear", func(fl validator.FieldLevel) bool {
			return CheckYear(int(fl.Field().Int()))
		})
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Translate converts an error from ShouldBindJSON into field errors. ok is
// false when err is not about the payload content (e.g. malformed JSON),
// in which case detail describes it.
func Translate(err error) (fields Errors, detail string, ok bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields = Errors{}
		for _, fe := range verrs {
			fields.Add(fieldKey(fe), message(fe))
		}
		return fields, "", true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields = Errors{}
		fields.Add(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type.Kind()))
		return fields, "", true
	}

	if errors.Is(err, io.EOF) {
		return nil, "Request body is empty.", false
	}
	return nil, fmt.Sprintf("JSON parse error - %s", err.Error()), false
}

// fieldKey strips the struct name from the namespace, so nested fields keep
// their path and list elements point at the list.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		if err := CheckUsername(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return errUsernameChars.Error()
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "pastyear":
		return "Year cannot be in the future."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "min", "gte":
		if isString(fe) {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "This list may not be empty."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max", "lte":
		if isString(fe) {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

func isString(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}
