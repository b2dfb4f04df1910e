// Package policy is the age-tier policy: how old a person is, and which
// restriction bundle that age implies.
package policy

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/common"
)

const birthDateLayout = "2006-01-02"

// CalculateAge returns whole years between birth and now, treating both as
// calendar dates. One year is subtracted while this year's birthday is
// still ahead.
func CalculateAge(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// ParseBirthDate parses a YYYY-MM-DD birthdate. Dates after now (as a
// calendar date in loc) are rejected.
func ParseBirthDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	birth, err := time.ParseInLocation(birthDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birthDate must be YYYY-MM-DD", common.ErrValidation)
	}
	today := now.In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if birth.After(today) {
		return time.Time{}, fmt.Errorf("%w: birthDate is in the future", common.ErrValidation)
	}
	return birth, nil
}
