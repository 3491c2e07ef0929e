package schedule

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// Code identifies a shift. The set is closed; see Catalog.
type Code string

const (
	CodeP   Code = "P"   // Pagi, day shift
	CodePM  Code = "PM"  // Pagi-malam, afternoon into night
	CodeM   Code = "M"   // Malam, night shift
	CodeOff Code = "OFF" // No duty
)

var CodeValues = []string{
	string(CodeP),
	string(CodePM),
	string(CodeM),
	string(CodeOff),
}

func (c Code) IsOff() bool {
	return c == CodeOff || c == ""
}

// Definition is the nominal shape of a shift.
type Definition struct {
	Code  Code
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
	Label string
}

// IsOvernight reports whether the shift ends on the next calendar day.
func (d Definition) IsOvernight() bool {
	return d.End.Minutes() <= d.Start.Minutes()
}

// Timings are the concrete instants of one shift occurrence.
type Timings struct {
	Code  Code
	Date  calendar.Date
	Start time.Time
	End   time.Time
}

// Override pins a worker to a shift code on one day.
type Override struct {
	ID        string
	WorkerID  string
	Date      calendar.Date
	Code      Code
	Note      *string
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MorningCutoverHour is the local hour before which a worker is still
// attributed to the previous day's overnight shift.
const MorningCutoverHour = 8
