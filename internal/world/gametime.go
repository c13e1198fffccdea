package world

import "fmt"

// Simulation runs at 144 ticks per second of game time.
const (
	TicksPerSecond = 144
	TicksPerMinute = TicksPerSecond * 60
	TicksPerHour   = TicksPerMinute * 60
	TicksPerDay    = TicksPerHour * 24
	TicksPerWeek   = TicksPerDay * 7

	// TurboTicks is the five-minute epoch; turbo advances align to it.
	TurboTicks = TicksPerMinute * 5
)

// GameTime is the world clock. AddTicks raises a flag for every calendar
// boundary crossed; the scheduler reads the flags to fire epoch cascades and
// clears them at the end of the update.
type GameTime struct {
	ticks uint64

	fiveMinutesPassed bool
	hourPassed        bool
	dayPassed         bool
	weekPassed        bool
}

func NewGameTime(ticks uint64) GameTime {
	return GameTime{ticks: ticks}
}

// Midday is the new-game start time: 12:00 on day 1.
func Midday() GameTime {
	return NewGameTime(12 * TicksPerHour)
}

func (t GameTime) Ticks() uint64 { return t.ticks }

func (t *GameTime) AddTicks(n uint) {
	old := t.ticks
	t.ticks += uint64(n)
	if old/TurboTicks != t.ticks/TurboTicks {
		t.fiveMinutesPassed = true
	}
	if old/TicksPerHour != t.ticks/TicksPerHour {
		t.hourPassed = true
	}
	if old/TicksPerDay != t.ticks/TicksPerDay {
		t.dayPassed = true
	}
	if old/TicksPerWeek != t.ticks/TicksPerWeek {
		t.weekPassed = true
	}
}

func (t GameTime) FiveMinutesPassed() bool { return t.fiveMinutesPassed }
func (t GameTime) HourPassed() bool        { return t.hourPassed }
func (t GameTime) DayPassed() bool         { return t.dayPassed }
func (t GameTime) WeekPassed() bool        { return t.weekPassed }

func (t *GameTime) ClearFlags() {
	t.fiveMinutesPassed = false
	t.hourPassed = false
	t.dayPassed = false
	t.weekPassed = false
}

// Week is 1-based.
func (t GameTime) Week() int { return int(t.ticks/TicksPerWeek) + 1 }

// Day is 1-based.
func (t GameTime) Day() int { return int(t.ticks/TicksPerDay) + 1 }

func (t GameTime) Hour() int   { return int(t.ticks%TicksPerDay) / TicksPerHour }
func (t GameTime) Minute() int { return int(t.ticks%TicksPerHour) / TicksPerMinute }

func (t GameTime) String() string {
	return fmt.Sprintf("Day %d %02d:%02d", t.Day(), t.Hour(), t.Minute())
}
