package member

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const minimumAge = 18

var (
	// National Registration Card: six digits, slash, two digits, slash, one.
	nrcPattern = regexp.MustCompile(`^\d{6}/\d{2}/\d$`)
	// Zambian mobile: +260 followed by nine digits, or a bare ten-digit
	// number as written on paper forms.
	phonePattern = regexp.MustCompile(`^(\+260\d{9}|\d{10})$`)
)

// Validate applies the full intake rule set to a registration. The same
// rules run on create and on edit-in-place; status changes are not
// re-validated against them.
func Validate(reg Registration, now time.Time) error {
	if strings.TrimSpace(reg.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if !nrcPattern.MatchString(strings.TrimSpace(reg.NRCNumber)) {
		return fmt.Errorf("%w: nrc_number must match 000000/00/0", ErrValidation)
	}
	if reg.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date_of_birth is required", ErrValidation)
	}
	if age(reg.DateOfBirth, now) < minimumAge {
		return fmt.Errorf("%w: members must be at least %d years old", ErrValidation, minimumAge)
	}
	if !phonePattern.MatchString(strings.TrimSpace(reg.Phone)) {
		return fmt.Errorf("%w: phone must be +260XXXXXXXXX or a 10-digit number", ErrValidation)
	}
	if err := reg.Jurisdiction.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(reg.Address) == "" {
		return fmt.Errorf("%w: residential_address is required", ErrValidation)
	}
	return nil
}

func age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}
