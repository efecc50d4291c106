package user

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

var (
	validate   = validator.New()
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.]{3,32}$`)
)

// NormalizeMobile parses raw in region (ISO 3166 alpha-2, used when raw has
// no country code) and returns it in E.164 form.
func NormalizeMobile(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeEmail lowercases and checks the address.
func NormalizeEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(e, "required,email,max=254"); err != nil {
		return "", ErrInvalidEmail
	}
	return e, nil
}

func NormalizeUsername(raw string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(raw))
	if !reUsername.MatchString(u) {
		return "", ErrInvalidUsername
	}
	return u, nil
}

func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > 100 {
		return ErrInvalidName
	}
	return nil
}
