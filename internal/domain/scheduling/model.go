package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInfeasible is returned when no doctor and room can be found for a
	// registration within the scheduling horizon.
	ErrInfeasible = errors.New("no consultation slot available")
	// ErrConflict is returned when a booking would double-book a doctor, a
	// room or a patient.
	ErrConflict = errors.New("consultation conflicts with an existing booking")
	// ErrNotFound is returned when a consultation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCondition is returned for a condition outside the supported set.
	ErrUnknownCondition = errors.New("unknown condition")
)

// Condition is the diagnosis a patient is registered with.
type Condition string

const (
	ConditionBreastCancer      Condition = "breastcancer"
	ConditionHeadAndNeckCancer Condition = "headandneckcancer"
	ConditionFlu               Condition = "flu"
)

// Conditions lists every supported condition.
var Conditions = []Condition{ConditionBreastCancer, ConditionHeadAndNeckCancer, ConditionFlu}

// ParseCondition accepts a condition token in any letter case.
func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCondition, s)
	}
	return c, nil
}

// Valid reports whether c is a supported condition.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Date is a calendar day with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// AddDays returns the day n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Midnight returns the instant day d starts in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Midnight(time.UTC).Before(other.Midnight(time.UTC))
}

func (d Date) String() string {
	return d.Midnight(time.UTC).Format(dateLayout)
}

// Consultation is a booked appointment between a patient, a doctor and a room
// on one calendar day.
type Consultation struct {
	ID               uuid.UUID `json:"id"`
	RegistrationDate time.Time `json:"registrationDate"`
	PatientID        uuid.UUID `json:"patientId"`
	DoctorID         uuid.UUID `json:"doctorId"`
	RoomID           uuid.UUID `json:"roomId"`
	ConsultationDate time.Time `json:"consultationDate"`

	// Day is the calendar day of ConsultationDate in the scheduling time zone.
	Day Date `json:"-"`
}

// Occupancy is the set of doctors and rooms already booked on one day.
type Occupancy struct {
	Doctors map[uuid.UUID]bool
	Rooms   map[uuid.UUID]bool
}

func newOccupancy() *Occupancy {
	return &Occupancy{Doctors: map[uuid.UUID]bool{}, Rooms: map[uuid.UUID]bool{}}
}
