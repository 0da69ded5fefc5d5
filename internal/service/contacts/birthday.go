package contacts

import (
	"slices"
	"time"

	"github.com/nkiryanov/contactbook/internal/models"
)

// UpcomingBirthdays resolves every contact's recurring birthday (month and
// day, year-less) against today and returns contacts whose next occurrence
// falls within windowDays, sorted ascending by days until.
//
// Both window bounds are inclusive: a birthday today counts (days until 0)
// and so does one exactly windowDays away. Year rollover needs no special
// case: an occurrence that already passed this year is simply recomputed
// for the next year.
//
// Pure function, no side effects.
func UpcomingBirthdays(today time.Time, windowDays int, contacts []models.Contact) []models.UpcomingBirthday {
	today = dateOnly(today)

	upcoming := make([]models.UpcomingBirthday, 0, len(contacts))
	for _, c := range contacts {
		month, day := c.Birthdate.Month(), c.Birthdate.Day()

		next := occurrence(today.Year(), month, day)
		if next.Before(today) {
			next = occurrence(today.Year()+1, month, day)
		}

		daysUntil := int(next.Sub(today) / (24 * time.Hour))
		if daysUntil > windowDays {
			continue
		}

		upcoming = append(upcoming, models.UpcomingBirthday{
			ContactID:      c.ID,
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			NextOccurrence: next,
			DaysUntil:      daysUntil,
		})
	}

	// Stable sort: contacts sharing a day keep their input order
	slices.SortStableFunc(upcoming, func(a, b models.UpcomingBirthday) int {
		return a.DaysUntil - b.DaysUntil
	})

	return upcoming
}

// occurrence maps a recurring month/day onto a concrete year.
// Feb 29 in a non-leap year resolves to Feb 28.
func occurrence(year int, month time.Month, day int) time.Time {
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// dateOnly drops the time of day and normalizes to UTC so that date
// subtraction always yields whole days
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
