package permit

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// Type is the reason for an absence.
type Type string

const (
	TypeSakit Type = "SAKIT" // Illness
	TypeIzin  Type = "IZIN"  // Personal permit
	TypeCuti  Type = "CUTI"  // Annual leave
)

var TypeValues = []string{
	string(TypeSakit),
	string(TypeIzin),
	string(TypeCuti),
}

func (t Type) IsIllness() bool {
	return t == TypeSakit
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Permit struct {
	ID              string
	WorkerID        string
	StartDate       calendar.Date
	EndDate         calendar.Date
	Type            Type
	Status          Status
	Reason          *string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	WorkerName *string
}

// Covers reports whether the permit spans the given day.
func (p Permit) Covers(d calendar.Date) bool {
	return calendar.Range{From: p.StartDate, To: p.EndDate}.Contains(d)
}

// FindCovering returns the first approved permit spanning d.
func FindCovering(permits []Permit, d calendar.Date) (Permit, bool) {
	for _, p := range permits {
		if p.Status == StatusApproved && p.Covers(d) {
			return p, true
		}
	}
	return Permit{}, false
}
