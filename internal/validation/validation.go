// Package validation checks raw operator input against the field grammars of
// the reservation data model. Every function is pure: it returns the accepted,
// normalized value or a *domain.ValidationError naming the field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MaxNameLen         = 24
	PassportLen        = 8
	MaxFlightNumberLen = 8
	MaxPlaceLen        = 16
	MaxPlaneLen        = 16

	MinSeats    = 1
	MaxSeats    = 500
	MinDuration = 1
	MaxDuration = 24
	MinScore    = 0
	MaxScore    = 5

	MinBirthYear = 1900
	MaxBirthYear = 2017
	maxYear      = 9999
)

const (
	tagLettersSpaces = "letters_spaces"
	tagDate          = "mdy_date"
	tagCalendarDay   = "calendar_day"
	tagNotBlank      = "notblank"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		tagLettersSpaces: isLettersSpaces,
		tagDate:          isDate,
		tagCalendarDay:   isCalendarDay,
		tagNotBlank:      validators.NotBlank,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s: %v", tag, err))
		}
	}
	return v
}

// Name accepts up to 24 letters or spaces.
func Name(raw string) (string, error) {
	return text("full_name", raw, fmt.Sprintf("max=%d,%s", MaxNameLen, tagLettersSpaces))
}

// Country follows the same grammar as Name.
func Country(raw string) (string, error) {
	return text("country", raw, fmt.Sprintf("max=%d,%s", MaxNameLen, tagLettersSpaces))
}

// Place validates an origin or destination city.
func Place(field, raw string) (string, error) {
	return text(field, raw, fmt.Sprintf("%s,max=%d,%s", tagNotBlank, MaxPlaceLen, tagLettersSpaces))
}

// Passport accepts exactly 8 uppercase letters or digits.
func Passport(raw string) (string, error) {
	return text("passport_number", raw, fmt.Sprintf("len=%d,alphanum,uppercase", PassportLen))
}

// FlightNumber accepts 1 to 8 uppercase letters or digits.
func FlightNumber(raw string) (string, error) {
	return text("flight_number", raw, fmt.Sprintf("required,max=%d,alphanum,uppercase", MaxFlightNumberLen))
}

// Plane is free text of at most 16 characters.
func Plane(raw string) (string, error) {
	return text("plane", raw, fmt.Sprintf("max=%d", MaxPlaneLen))
}

// BirthDate parses M/D/YYYY with the year restricted to [1900, 2017].
// Unless strict is set the day is only checked against [1, 31].
func BirthDate(raw string, strict bool) (domain.Date, error) {
	return parseDate("birth_date", raw, MinBirthYear, MaxBirthYear, strict)
}

// DepartureDate uses the BirthDate grammar without the 2017 upper bound.
func DepartureDate(raw string, strict bool) (domain.Date, error) {
	return parseDate("date", raw, MinBirthYear, maxYear, strict)
}

func Seats(raw string) (int, error) {
	return boundedInt("seats", raw, "required,number", MinSeats, MaxSeats)
}

func Duration(raw string) (int, error) {
	return boundedInt("duration", raw, "required,number", MinDuration, MaxDuration)
}

// Score accepts a single digit in [0, 5].
func Score(raw string) (int, error) {
	return boundedInt("score", raw, "len=1,number", MinScore, MaxScore)
}

// ID validates a positive numeric identifier such as an airline or passenger id.
func ID(field, raw string) (int64, error) {
	if err := check(field, raw, "required,number"); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be a positive number")
	}
	if err := check(field, id, "gt=0"); err != nil {
		return 0, err
	}
	return id, nil
}

// PositiveCount validates the k of the top-k reports.
func PositiveCount(field string, k int) error {
	return check(field, k, "gt=0")
}

func parseDate(field, raw string, minYear, maxYear int, strict bool) (domain.Date, error) {
	tags := "required," + tagDate
	if strict {
		tags += "," + tagCalendarDay
	}
	if err := check(field, raw, tags); err != nil {
		return domain.Date{}, err
	}

	month, day, year, _ := splitDate(raw)
	if err := validate.Var(year, fmt.Sprintf("min=%d,max=%d", minYear, maxYear)); err != nil {
		return domain.Date{}, domain.NewValidationError(field, fmt.Sprintf("year must be between %d and %d", minYear, maxYear))
	}
	return domain.Date{Month: month, Day: day, Year: year}, nil
}

func boundedInt(field, raw, tags string, min, max int) (int, error) {
	if err := check(field, raw, tags); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err == nil {
		err = validate.Var(n, fmt.Sprintf("min=%d,max=%d", min, max))
	}
	if err != nil {
		return 0, domain.NewValidationError(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return n, nil
}

func text(field, raw, tags string) (string, error) {
	if err := check(field, raw, tags); err != nil {
		return "", err
	}
	return raw, nil
}

// check runs tags against value and reports the first failure for field.
func check(field string, value interface{}, tags string) error {
	err := validate.Var(value, tags)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domain.NewValidationError(field, reason(fieldErrs[0]))
	}
	return domain.NewValidationError(field, err.Error())
}

func reason(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", tagNotBlank:
		return "is required"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "max":
		if isText {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "number":
		return "must be numeric (0-9)"
	case "alphanum", "uppercase":
		return "must be upper case letters or digits"
	case tagLettersSpaces:
		return "must contain letters and spaces only"
	case tagDate:
		return "must have the form M/D/YYYY"
	case tagCalendarDay:
		return "day does not exist in that month"
	}
	return "failed " + fe.Tag()
}

func isLettersSpaces(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r != ' ' && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// isDate accepts M/D/YYYY with a one or two digit month in [1, 12] and day
// in [1, 31].
func isDate(fl validator.FieldLevel) bool {
	_, _, _, ok := splitDate(fl.Field().String())
	return ok
}

func isCalendarDay(fl validator.FieldLevel) bool {
	month, day, year, ok := splitDate(fl.Field().String())
	return ok && day <= daysIn(time.Month(month), year)
}

func splitDate(s string) (month, day, year int, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 4 || !isDigits(parts[2]) {
		return 0, 0, 0, false
	}
	if month, ok = dateComponent(parts[0], 1, 12); !ok {
		return 0, 0, 0, false
	}
	if day, ok = dateComponent(parts[1], 1, 31); !ok {
		return 0, 0, 0, false
	}
	year, _ = strconv.Atoi(parts[2])
	return month, day, year, true
}

// dateComponent accepts one or two digits within [min, max].
func dateComponent(s string, min, max int) (int, bool) {
	if len(s) == 0 || len(s) > 2 || !isDigits(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, n >= min && n <= max
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
