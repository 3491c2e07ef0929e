package fixtures

import (
	"fmt"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func strPtr(s string) *string { return &s }

// ==========================================
// DEFAULT WORKFORCE
// ==========================================

// GetDefaultSecurityTeam returns one guard per rotation offset, which staffs
// P, PM and M every day of the cycle.
func GetDefaultSecurityTeam() []worker.Worker {
	team := make([]worker.Worker, 0, worker.RotationCycleLength)
	for offset := 0; offset < worker.RotationCycleLength; offset++ {
		team = append(team, worker.Worker{
			FullName:       fmt.Sprintf("Security %d", offset+1),
			Role:           worker.RoleSecurity,
			RotationOffset: offset,
			IsActive:       true,
		})
	}
	return team
}

// GetDefaultGroundCrew returns the weekday-scheduled roles.
func GetDefaultGroundCrew() []worker.Worker {
	return []worker.Worker{
		{FullName: "Lingkungan 1", Role: worker.RoleLingkungan, IsActive: true},
		{FullName: "Lingkungan 2", Role: worker.RoleLingkungan, IsActive: true},
		{FullName: "Kebersihan 1", Role: worker.RoleKebersihan, IsActive: true},
		{FullName: "Kebersihan 2", Role: worker.RoleKebersihan, IsActive: true},
	}
}

// GetDefaultSupervisors returns the non-field accounts.
func GetDefaultSupervisors() []worker.Worker {
	return []worker.Worker{
		{FullName: "Estate Supervisor", Role: worker.RoleSupervisor, PhoneNumber: strPtr("+620000000001"), IsActive: true},
		{FullName: "Estate Admin", Role: worker.RoleAdmin, IsActive: true},
	}
}

// GetDefaultWorkforce returns every default worker, field roles first.
func GetDefaultWorkforce() []worker.Worker {
	all := GetDefaultSecurityTeam()
	all = append(all, GetDefaultGroundCrew()...)
	return append(all, GetDefaultSupervisors()...)
}
