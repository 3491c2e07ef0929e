package worker

import (
	"strings"
	"time"
)

type Worker struct {
	ID             string
	FullName       string
	PhoneNumber    *string
	Role           Role
	RotationOffset int // 0-4, only used by the rotating role
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role is the closed set of worker roles.
type Role string

const (
	RoleSecurity   Role = "SECURITY"   // Rotating P/PM/M cycle
	RoleLingkungan Role = "LINGKUNGAN" // Groundskeeping, Mon-Fri
	RoleKebersihan Role = "KEBERSIHAN" // Cleaning, Mon-Sat
	RoleSupervisor Role = "SUPERVISOR" // Non-field, no shifts
	RoleAdmin      Role = "ADMIN"      // Non-field, no shifts
)

var RoleValues = []string{
	string(RoleSecurity),
	string(RoleLingkungan),
	string(RoleKebersihan),
	string(RoleSupervisor),
	string(RoleAdmin),
}

// ParseRole normalises a role name. Unknown names return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleSecurity, RoleLingkungan, RoleKebersihan, RoleSupervisor, RoleAdmin:
		return r, true
	}
	return "", false
}

// IsField reports whether the role works shifts on site.
func (r Role) IsField() bool {
	switch r {
	case RoleSecurity, RoleLingkungan, RoleKebersihan:
		return true
	}
	return false
}

// CanSupervise reports whether the role may read reports and dashboards.
func (r Role) CanSupervise() bool {
	return r == RoleSupervisor || r == RoleAdmin
}

// RotationCycleLength is the number of days in the security rotation.
const RotationCycleLength = 5

// NormalizedOffset folds any offset into 0..RotationCycleLength-1.
func (w Worker) NormalizedOffset() int {
	o := w.RotationOffset % RotationCycleLength
	if o < 0 {
		o += RotationCycleLength
	}
	return o
}

// Validate checks the fields the database also constrains.
func (w Worker) Validate() error {
	if _, ok := ParseRole(string(w.Role)); !ok {
		return ErrInvalidRole
	}
	if w.RotationOffset < 0 || w.RotationOffset >= RotationCycleLength {
		return ErrInvalidRotationOffset
	}
	return nil
}
