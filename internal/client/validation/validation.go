// Package validation checks user input before any request is sent. Every
// failure carries the message shown to the user.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("mail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})
	return v
}

// Error is a single failed check.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// messages maps a failed validator tag to the user-facing text.
type messages map[string]string

func check(value, field, rules string, msgs messages) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return &Error{Field: field, Message: msgs[verrs[0].Tag()]}
}

func ValidateEmail(email string) error {
	return check(email, "email", "required,mail", messages{
		"required": "Email is required",
		"mail":     "Please enter a valid email address",
	})
}

func ValidatePassword(password string) error {
	return check(password, "password", "required,min=6", messages{
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	})
}

func ValidateName(name string) error {
	return check(name, "name", "required,trimmin=2", messages{
		"required": "Name is required",
		"trimmin":  "Name must be at least 2 characters",
	})
}

func ValidatePostContent(content string) error {
	return check(content, "content", "required,notblank,max=500", messages{
		"required": "Post content is required",
		"notblank": "Post content is required",
		"max":      "Post must be less than 500 characters",
	})
}

func ValidateCommentContent(content string) error {
	return check(content, "content", "required,notblank,max=200", messages{
		"required": "Comment is required",
		"notblank": "Comment is required",
		"max":      "Comment must be less than 200 characters",
	})
}

// FieldErrors maps a form field (by its JSON name) to its first failure.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

// Err returns f as an error, or nil when f is empty.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,mail"`
	Password string `json:"password" validate:"required,min=6"`
}

var loginMessages = map[string]messages{
	"email":    {"required": "Email is required", "mail": "Invalid email address"},
	"password": {"required": "Password is required", "min": "Password must be at least 6 characters"},
}

type SignupForm struct {
	FirstName string `json:"firstName" validate:"required,trimmin=2"`
	LastName  string `json:"lastName" validate:"required,trimmin=2"`
	Email     string `json:"email" validate:"required,mail"`
	Password  string `json:"password" validate:"required,min=6"`
}

var signupMessages = map[string]messages{
	"firstName": {"required": "First name is required", "trimmin": "First name must be at least 2 characters"},
	"lastName":  {"required": "Last name is required", "trimmin": "Last name must be at least 2 characters"},
	"email":     loginMessages["email"],
	"password":  loginMessages["password"],
}

// ValidateLogin returns nil when the form is valid.
func ValidateLogin(f LoginForm) FieldErrors {
	return checkForm(f, loginMessages)
}

// ValidateSignup returns nil when the form is valid.
func ValidateSignup(f SignupForm) FieldErrors {
	return checkForm(f, signupMessages)
}

func checkForm(form any, msgs map[string]messages) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = msgs[fe.Field()][fe.Tag()]
	}
	return out
}
