package validation

import (
	"strings"
	"testing"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRejected(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, field, ve.Field)
	assert.NotEmpty(t, ve.Reason)
}

func TestName(t *testing.T) {
	got, err := Name("Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got)

	_, err = Name(strings.Repeat("a", 24))
	assert.NoError(t, err)

	_, err = Name(strings.Repeat("a", 25))
	assertRejected(t, err, "full_name")

	_, err = Name("Jane-Doe")
	assertRejected(t, err, "full_name")

	_, err = Country("USA")
	assert.NoError(t, err)
	_, err = Country("U5A")
	assertRejected(t, err, "country")
}

func TestPassport(t *testing.T) {
	for _, ok := range []string{"AB123456", "ABCDEFGH", "12345678"} {
		_, err := Passport(ok)
		assert.NoError(t, err, ok)
	}

	testCases := []string{"AB12345", "AB1234567", "ab123456", "AB 23456", ""}
	for _, tc := range testCases {
		_, err := Passport(tc)
		assertRejected(t, err, "passport_number")
	}
}

func TestFlightNumber(t *testing.T) {
	_, err := FlightNumber("AA1234")
	assert.NoError(t, err)
	_, err = FlightNumber("12345678")
	assert.NoError(t, err)

	for _, bad := range []string{"", "AA123456X", "aa12", "AA-12"} {
		_, err := FlightNumber(bad)
		assertRejected(t, err, "flight_number")
	}
}

func TestPlace(t *testing.T) {
	_, err := Place("origin", "Los Angeles")
	assert.NoError(t, err)

	_, err = Place("origin", "")
	assertRejected(t, err, "origin")
	_, err = Place("destination", strings.Repeat("x", 17))
	assertRejected(t, err, "destination")
	_, err = Place("destination", "JFK1")
	assertRejected(t, err, "destination")
}

func TestPlane(t *testing.T) {
	_, err := Plane("Boeing 737-800")
	assert.NoError(t, err)
	_, err = Plane(strings.Repeat("x", 17))
	assertRejected(t, err, "plane")
}

func TestBirthDate(t *testing.T) {
	testCases := []struct {
		raw  string
		want domain.Date
	}{
		{"5/3/1990", domain.Date{Month: 5, Day: 3, Year: 1990}},
		{"12/31/2017", domain.Date{Month: 12, Day: 31, Year: 2017}},
		{"1/1/1900", domain.Date{Month: 1, Day: 1, Year: 1900}},
		{"05/03/1990", domain.Date{Month: 5, Day: 3, Year: 1990}},
		// the day is not checked against the month in the default mode
		{"2/31/2000", domain.Date{Month: 2, Day: 31, Year: 2000}},
	}
	for _, tc := range testCases {
		got, err := BirthDate(tc.raw, false)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	for _, bad := range []string{"5/3", "5/3/1990/1", "13/1/1990", "0/1/1990", "1/0/1990", "1/32/1990", "1/1/1899", "1/1/2018", "123/1/1990", "a/1/1990", "1/1/90", ""} {
		_, err := BirthDate(bad, false)
		assertRejected(t, err, "birth_date")
	}
}

func TestBirthDate_StrictCalendar(t *testing.T) {
	_, err := BirthDate("2/31/2000", true)
	assertRejected(t, err, "birth_date")

	_, err = BirthDate("2/29/2000", true)
	assert.NoError(t, err)
	_, err = BirthDate("2/29/2001", true)
	assertRejected(t, err, "birth_date")
}

func TestDepartureDate(t *testing.T) {
	got, err := DepartureDate("11/15/2026", false)
	require.NoError(t, err)
	assert.Equal(t, "11/15/2026", got.String())

	_, err = DepartureDate("11/15/26", false)
	assertRejected(t, err, "date")
}

func TestSeatsAndDuration(t *testing.T) {
	n, err := Seats("500")
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	for _, bad := range []string{"0", "501", "-1", "ten", ""} {
		_, err := Seats(bad)
		assertRejected(t, err, "seats")
	}

	n, err = Duration("24")
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	for _, bad := range []string{"0", "25", "1.5"} {
		_, err := Duration(bad)
		assertRejected(t, err, "duration")
	}
}

func TestScore(t *testing.T) {
	for raw, want := range map[string]int{"0": 0, "3": 3, "5": 5} {
		got, err := Score(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"6", "35", "", "-1", "a"} {
		_, err := Score(bad)
		assertRejected(t, err, "score")
	}
}

func TestID(t *testing.T) {
	id, err := ID("airline_id", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "4a", "-3", "99999999999999999999"} {
		_, err := ID("airline_id", bad)
		assertRejected(t, err, "airline_id")
	}
}

func TestPositiveCount(t *testing.T) {
	assert.NoError(t, PositiveCount("k", 3))
	assertRejected(t, PositiveCount("k", 0), "k")
}

func TestRejectionReasons(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		field  string
		reason string
	}{
		{"passport length", second(Passport("AB12")), "passport_number", "must be exactly 8 characters"},
		{"passport case", second(Passport("ab123456")), "passport_number", "must be upper case letters or digits"},
		{"flight number missing", second(FlightNumber("")), "flight_number", "is required"},
		{"name too long", second(Name(strings.Repeat("a", 25))), "full_name", "must be at most 24 characters"},
		{"name charset", second(Name("J4ne")), "full_name", "must contain letters and spaces only"},
		{"blank place", second(Place("origin", "   ")), "origin", "is required"},
		{"seats not numeric", second(Seats("1.5")), "seats", "must be numeric (0-9)"},
		{"seats out of range", second(Seats("501")), "seats", "must be between 1 and 500"},
		{"k not positive", PositiveCount("k", -1), "k", "must be greater than 0"},
		{"malformed date", second(DepartureDate("2026-11-15", false)), "date", "must have the form M/D/YYYY"},
		{"year out of range", second(BirthDate("1/1/2018", false)), "birth_date", "year must be between 1900 and 2017"},
		{"impossible day", second(DepartureDate("4/31/2027", true)), "date", "day does not exist in that month"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			var ve *domain.ValidationError
			require.ErrorAs(t, tt.err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func second[T interface{}](_ T, err error) error {
	return err
}
