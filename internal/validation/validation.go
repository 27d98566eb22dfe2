// Package validation holds the input rules shared by sign-up, registration and profile edits.
// Rules are validator tags, so forms declare them on their fields:
//
//	Email    string `json:"email" validate:"required,email,dotted_domain"`
//	Password string `json:"password" validate:"required,min=8,password"`
//	Username string `json:"username" validate:"required,min=6,username"`
//	Name     string `json:"display_name" validate:"required,full_name"`
//	Nickname string `json:"nickname" validate:"required,nickname"`
package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/shuttle-league/internal/apperr"
)

const (
	emailTag    = "required,email,dotted_domain"
	passwordTag = "required,min=8,password"
	usernameTag = "required,min=6,username"
	fullNameTag = "required,full_name"
	nicknameTag = "required,nickname"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range map[string]validator.Func{
		"dotted_domain": dottedDomain,
		"password":      mixedCase,
		"username":      usernameChars,
		"full_name":     lettersAndSpaces,
		"nickname":      lettersOnly,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// jsonName reports struct fields by their JSON name, which is what clients see.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// dottedDomain rejects addresses like "a@b" that the email tag lets through.
func dottedDomain(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func mixedCase(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if strings.TrimSpace(password) == "" {
		return false
	}
	var digit, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return digit && upper && lower
}

func usernameChars(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

func lettersAndSpaces(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func lettersOnly(fl validator.FieldLevel) bool {
	nickname := fl.Field().String()
	if nickname == "" {
		return false
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsValidEmail reports whether email is non-blank and has a dotted domain.
func IsValidEmail(email string) bool {
	return validate.Var(email, emailTag) == nil
}

// IsValidPassword reports whether password has at least eight characters,
// among them a digit, an uppercase and a lowercase letter.
func IsValidPassword(password string) bool {
	return validate.Var(password, passwordTag) == nil
}

// IsValidUsername reports whether username has at least six characters drawn from
// lowercase letters, digits, '_' and '.'.
func IsValidUsername(username string) bool {
	return validate.Var(username, usernameTag) == nil
}

// IsValidFullName reports whether name is non-blank and made of letters and spaces.
func IsValidFullName(name string) bool {
	return validate.Var(name, fullNameTag) == nil
}

// IsValidNickname reports whether nickname is a single word of letters.
func IsValidNickname(nickname string) bool {
	return validate.Var(nickname, nicknameTag) == nil
}

// Username returns a field error describing why username is rejected, or nil.
func Username(username string) error {
	if err := validate.Var(username, usernameTag); err != nil {
		return fieldError("username", err)
	}
	return nil
}

// Struct checks a form against its validate tags and reports the first failing field.
func Struct(ctx context.Context, form any) error {
	if err := validate.StructCtx(ctx, form); err != nil {
		return fieldError("", err)
	}
	return nil
}

func fieldError(field string, err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperr.Invalid("validate", err.Error())
	}
	fe := errs[0]
	if field == "" {
		field = fe.Field()
	}
	return apperr.Field(field, message(field, fe))
}

func message(field string, fe validator.FieldError) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "email", "dotted_domain":
		return "email address is not valid"
	case "password":
		return "password must contain a digit, an uppercase and a lowercase letter"
	case "username":
		return "username may only contain lowercase letters, digits, '_' and '.'"
	case "full_name":
		return label + " may only contain letters and spaces"
	case "nickname":
		return "nickname may only contain letters"
	}
	return label + " is not valid"
}
