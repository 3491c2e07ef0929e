package schedule

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func testEngine() *Engine {
	return NewEngine(config.DefaultSettings(wib))
}

func guard(offset int) worker.Worker {
	return worker.Worker{
		ID:             "guard",
		FullName:       "Guard",
		Role:           worker.RoleSecurity,
		RotationOffset: offset,
		IsActive:       true,
	}
}

func TestResolver_RotationFollowsCycleForAFullYear(t *testing.T) {
	engine := testEngine()
	epoch := calendar.NewDate(2025, time.January, 1)
	year := calendar.Range{From: epoch, To: calendar.NewDate(2025, time.December, 31)}

	for _, day := range year.Days() {
		codes := map[schedule.Code]int{}
		for offset := 0; offset < worker.RotationCycleLength; offset++ {
			got := engine.Resolver.Resolve(guard(offset), day)
			want := RotationCycle[(day.DaysSince(epoch)+offset)%worker.RotationCycleLength]
			require.Equal(t, want, got, "day %s offset %d", day, offset)
			codes[got]++
		}
		// five guards staff every shift of every day
		assert.Equal(t, 1, codes[schedule.CodeP], day.String())
		assert.Equal(t, 1, codes[schedule.CodePM], day.String())
		assert.Equal(t, 1, codes[schedule.CodeM], day.String())
		assert.Equal(t, 2, codes[schedule.CodeOff], day.String())
	}
}

func TestResolver_RotationBeforeEpoch(t *testing.T) {
	engine := testEngine()
	epoch := calendar.NewDate(2025, time.January, 1)

	assert.Equal(t, schedule.CodeP, engine.Resolver.Resolve(guard(0), epoch))
	assert.Equal(t, schedule.CodeOff, engine.Resolver.Resolve(guard(0), epoch.AddDays(-1)))
	assert.Equal(t, schedule.CodeM, engine.Resolver.Resolve(guard(0), epoch.AddDays(-3)))
	assert.Equal(t, schedule.CodeP, engine.Resolver.Resolve(guard(0), epoch.AddDays(-5)))
}

func TestResolver_WeekdayRoles(t *testing.T) {
	engine := testEngine()
	monday := calendar.NewDate(2025, time.January, 6)

	lingkungan := worker.Worker{ID: "l", Role: worker.RoleLingkungan}
	kebersihan := worker.Worker{ID: "k", Role: worker.RoleKebersihan}
	supervisor := worker.Worker{ID: "s", Role: worker.RoleSupervisor}

	for i := 0; i < 7; i++ {
		day := monday.AddDays(i)

		wantL := schedule.CodeP
		if i >= 5 {
			wantL = schedule.CodeOff
		}
		wantK := schedule.CodeP
		if i == 6 {
			wantK = schedule.CodeOff
		}

		assert.Equal(t, wantL, engine.Resolver.Resolve(lingkungan, day), day.String())
		assert.Equal(t, wantK, engine.Resolver.Resolve(kebersihan, day), day.String())
		assert.Equal(t, schedule.CodeOff, engine.Resolver.Resolve(supervisor, day), day.String())
	}
}

func TestResolver_OverrideWins(t *testing.T) {
	engine := testEngine()
	sunday := calendar.NewDate(2025, time.January, 5)
	lingkungan := worker.Worker{ID: "l", Role: worker.RoleLingkungan}

	withOverride := engine.WithOverrides(NewOverrides([]schedule.Override{
		{WorkerID: "l", Date: sunday, Code: schedule.CodeM},
	}))

	assert.Equal(t, schedule.CodeOff, engine.Resolver.Resolve(lingkungan, sunday))
	assert.False(t, engine.Resolver.IsOverridden(lingkungan, sunday))

	assert.Equal(t, schedule.CodeM, withOverride.Resolver.Resolve(lingkungan, sunday))
	assert.True(t, withOverride.Resolver.IsOverridden(lingkungan, sunday))
	// other days and workers are untouched
	assert.Equal(t, schedule.CodeP, withOverride.Resolver.Resolve(lingkungan, sunday.AddDays(1)))
	assert.Equal(t, schedule.CodeOff, withOverride.Resolver.Resolve(worker.Worker{ID: "x", Role: worker.RoleLingkungan}, sunday))
}

func TestResolver_OffsetOutsideCycleIsFolded(t *testing.T) {
	engine := testEngine()
	day := calendar.NewDate(2025, time.February, 11)

	assert.Equal(t,
		engine.Resolver.Resolve(guard(1), day),
		engine.Resolver.Resolve(guard(6), day),
	)
}

func TestTimingCalculator(t *testing.T) {
	engine := testEngine()
	day := calendar.NewDate(2025, time.January, 1)

	tests := []struct {
		code  schedule.Code
		start time.Time
		end   time.Time
	}{
		{schedule.CodeP, time.Date(2025, 1, 1, 8, 0, 0, 0, wib), time.Date(2025, 1, 1, 16, 0, 0, 0, wib)},
		{schedule.CodePM, time.Date(2025, 1, 1, 16, 0, 0, 0, wib), time.Date(2025, 1, 2, 0, 0, 0, 0, wib)},
		{schedule.CodeM, time.Date(2025, 1, 1, 22, 0, 0, 0, wib), time.Date(2025, 1, 2, 6, 0, 0, 0, wib)},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			timings, ok, err := engine.Timing.Timings(tt.code, day)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, tt.start.Equal(timings.Start), "start %s", timings.Start)
			assert.True(t, tt.end.Equal(timings.End), "end %s", timings.End)
			assert.True(t, timings.End.After(timings.Start))
			assert.Equal(t, day, timings.Date)
		})
	}
}

func TestTimingCalculator_OffAndUnknown(t *testing.T) {
	engine := testEngine()
	day := calendar.NewDate(2025, time.January, 1)

	_, ok, err := engine.Timing.Timings(schedule.CodeOff, day)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = engine.Timing.Timings(schedule.Code("X"), day)
	assert.ErrorIs(t, err, schedule.ErrInvalidShiftCode)
	assert.False(t, ok)
}

func TestDutyResolver_MorningCutover(t *testing.T) {
	engine := testEngine()
	w := guard(0) // 01-01 P, 01-02 PM, 01-03 M, 01-04 OFF

	tests := []struct {
		name    string
		now     time.Time
		want    schedule.Code
		wantDay calendar.Date
	}{
		{"night shift carried past midnight", time.Date(2025, 1, 4, 5, 0, 0, 0, wib), schedule.CodeM, calendar.NewDate(2025, 1, 3)},
		{"cutover hour belongs to today", time.Date(2025, 1, 4, 8, 0, 0, 0, wib), schedule.CodeOff, calendar.NewDate(2025, 1, 4)},
		{"evening takes today's shift", time.Date(2025, 1, 3, 21, 0, 0, 0, wib), schedule.CodeM, calendar.NewDate(2025, 1, 3)},
		{"day shift has no carry over", time.Date(2025, 1, 2, 7, 0, 0, 0, wib), schedule.CodePM, calendar.NewDate(2025, 1, 2)},
		{"pm shift carried into early morning", time.Date(2025, 1, 3, 1, 0, 0, 0, wib), schedule.CodePM, calendar.NewDate(2025, 1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Duty.EffectiveShiftNow(w, nil, tt.now))
			assert.Equal(t, tt.wantDay, engine.Duty.ShiftDay(w, nil, tt.now))
		})
	}
}

func TestDutyResolver_OpenRecordWins(t *testing.T) {
	engine := testEngine()
	w := guard(0)

	code := schedule.CodeM
	start := time.Date(2025, 1, 3, 22, 0, 0, 0, wib)
	open := &attendance.Attendance{WorkerID: w.ID, ClockIn: start, ShiftType: &code, ScheduledClockIn: &start}

	// 10:00 on 01-04 is past the cutover, but the worker never clocked out
	now := time.Date(2025, 1, 4, 10, 0, 0, 0, wib)
	assert.Equal(t, schedule.CodeM, engine.Duty.EffectiveShiftNow(w, open, now))
	assert.Equal(t, calendar.NewDate(2025, 1, 3), engine.Duty.ShiftDay(w, open, now))
}

func TestEngine_DaylightSavingKeepsCivilDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	engine := NewEngine(config.DefaultSettings(ny))
	epoch := calendar.NewDate(2025, time.January, 1)
	years := calendar.Range{From: epoch, To: calendar.NewDate(2026, time.December, 31)}

	for _, day := range years.Days() {
		for offset := 0; offset < worker.RotationCycleLength; offset++ {
			want := RotationCycle[(day.DaysSince(epoch)+offset)%worker.RotationCycleLength]
			require.Equal(t, want, engine.Resolver.Resolve(guard(offset), day), "day %s offset %d", day, offset)
		}

		timings, ok, err := engine.Timing.Timings(schedule.CodeM, day)
		require.NoError(t, err)
		require.True(t, ok)

		start := timings.Start.In(ny)
		end := timings.End.In(ny)
		require.Equal(t, 22, start.Hour(), day.String())
		require.Equal(t, 6, end.Hour(), day.String())
		require.Equal(t, 0, end.Minute(), day.String())
		require.Equal(t, day.AddDays(1), calendar.DateOf(end), day.String())
		require.True(t, timings.End.After(timings.Start), day.String())
	}

	tests := []struct {
		name   string
		offset int
		now    time.Time
		want   schedule.Code
		day    calendar.Date
	}{
		// clocks jump from 02:00 to 03:00 on 2025-03-09; guard(1) works M on 03-08
		{"spring forward night carried over", 1, time.Date(2025, 3, 9, 1, 30, 0, 0, ny), schedule.CodeM, calendar.NewDate(2025, 3, 8)},
		{"spring forward after cutover", 1, time.Date(2025, 3, 9, 8, 0, 0, 0, ny), schedule.CodeOff, calendar.NewDate(2025, 3, 9)},
		// clocks fall back from 02:00 to 01:00 on 2025-11-02; guard(3) works M on 11-01
		{"fall back night carried over", 3, time.Date(2025, 11, 2, 5, 30, 0, 0, ny), schedule.CodeM, calendar.NewDate(2025, 11, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Duty.EffectiveShiftNow(guard(tt.offset), nil, tt.now))
			assert.Equal(t, tt.day, engine.Duty.ShiftDay(guard(tt.offset), nil, tt.now))
		})
	}
}

func TestBuildRoster(t *testing.T) {
	engine := testEngine()
	w := guard(0)
	dateRange := calendar.Range{From: calendar.NewDate(2025, 1, 1), To: calendar.NewDate(2025, 1, 5)}

	entries, err := BuildRoster(engine, w, dateRange)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	want := []schedule.Code{schedule.CodeP, schedule.CodePM, schedule.CodeM, schedule.CodeOff, schedule.CodeOff}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Code)
		assert.Equal(t, !want[i].IsOff(), e.Scheduled)
		assert.False(t, e.Override)
	}
	assert.Equal(t, "Malam", entries[2].Definition.Label)
}

func TestRenderCalendar(t *testing.T) {
	engine := testEngine()
	w := guard(0)
	dateRange := calendar.Range{From: calendar.NewDate(2025, 1, 1), To: calendar.NewDate(2025, 1, 5)}

	entries, err := BuildRoster(engine, w, dateRange)
	require.NoError(t, err)

	out := string(RenderCalendar(w, entries, wib, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "guard-2025-01-03@roster")
	// M on 01-03 runs 15:00Z to 23:00Z
	assert.Contains(t, out, "20250103T150000Z")
	assert.Contains(t, out, "20250103T230000Z")
}
