package report

import "github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"

const (
	maxScore         = 100
	flagPenalty      = 5
	maxMinutePenalty = 45
)

// Score rates one record from 0 to 100. Each lateness or early-leave flag
// costs 5 points plus half a point per minute, capped at 45 per flag.
// Absence scores 0; excused days score 100.
func Score(a attendance.Attendance) int {
	switch a.Status {
	case attendance.StatusAbsent:
		return 0
	case attendance.StatusSick, attendance.StatusPermit, attendance.StatusPermitPending:
		return maxScore
	}

	score := maxScore
	if a.IsLate {
		score -= penalty(a.LateMinutes)
	}
	if a.IsEarlyLeave {
		score -= penalty(a.EarlyLeaveMinutes)
	}
	if score < 0 {
		return 0
	}
	return score
}

func penalty(minutes int) int {
	if minutes < 0 {
		minutes = 0
	}
	return flagPenalty + min(maxMinutePenalty, minutes/2)
}
