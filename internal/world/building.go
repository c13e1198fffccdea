package world

import (
	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
)

// DetectionTimeout is how long a building stays flagged after aliens in it
// were detected.
const DetectionTimeout = TicksPerHour

// TicksPerDetectionAttempt spaces detection rolls, indexed by difficulty.
var TicksPerDetectionAttempt = [...]uint{
	TicksPerHour,
	2 * TicksPerHour,
	3 * TicksPerHour,
	4 * TicksPerHour,
	5 * TicksPerHour,
}

// DetectionInterval returns the detection attempt spacing for difficulty,
// clamped to the known range.
func DetectionInterval(difficulty int) uint {
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty >= len(TicksPerDetectionAttempt) {
		difficulty = len(TicksPerDetectionAttempt) - 1
	}
	return TicksPerDetectionAttempt[difficulty]
}

type Building struct {
	ID       string
	Name     string
	Function string
	City     state.Ref[City]
	Owner    state.Ref[Organisation]
	Bounds   Rect

	// BaseLayout is set on buildings a player base can be founded in.
	BaseLayout state.Ref[BaseLayout]
	Base       state.Ref[Base]

	LandedVehicles []state.Ref[Vehicle]

	// CurrentCrew counts the alien agent types hiding inside.
	CurrentCrew map[string]int

	TicksDetectionAttemptAccumulated uint
	TicksDetectionTimeOut            uint
}

// HasAliens reports whether any alien crew is inside.
func (b *Building) HasAliens() bool {
	for _, n := range b.CurrentCrew {
		if n > 0 {
			return true
		}
	}
	return false
}

// AddCrew puts n aliens of the given agent type into the building.
func (b *Building) AddCrew(agentTypeID string, n int) {
	if n <= 0 {
		return
	}
	if b.CurrentCrew == nil {
		b.CurrentCrew = make(map[string]int)
	}
	b.CurrentCrew[agentTypeID] += n
}

// Detected reports whether the building is inside its detection window.
func (b *Building) Detected() bool { return b.TicksDetectionTimeOut > 0 }

// UpdateDetection runs down the detection window and, while aliens are
// present, rolls a detection attempt for every full attempt interval.
func (b *Building) UpdateDetection(s *State, ticks uint) {
	if b.TicksDetectionTimeOut > 0 {
		if ticks >= b.TicksDetectionTimeOut {
			b.TicksDetectionTimeOut = 0
		} else {
			b.TicksDetectionTimeOut -= ticks
		}
	}
	if !b.HasAliens() {
		b.TicksDetectionAttemptAccumulated = 0
		return
	}
	interval := DetectionInterval(s.Difficulty)
	b.TicksDetectionAttemptAccumulated += ticks
	for b.TicksDetectionAttemptAccumulated >= interval {
		b.TicksDetectionAttemptAccumulated -= interval
		if b.TicksDetectionTimeOut > 0 {
			continue
		}
		chance := s.Rules.DetectionChance(b, s.Difficulty)
		if chance > 0 && s.Rng.Intn(100) < chance {
			b.TicksDetectionTimeOut = DetectionTimeout
			s.Emit(NewBuildingEvent(event.KindAlienDetected, b))
		}
	}
}

// Land records a vehicle as parked in the building.
func (b *Building) Land(v state.Ref[Vehicle]) {
	for _, r := range b.LandedVehicles {
		if r == v {
			return
		}
	}
	b.LandedVehicles = append(b.LandedVehicles, v)
}

// Unland drops a vehicle from the parked list.
func (b *Building) Unland(v state.Ref[Vehicle]) {
	for i, r := range b.LandedVehicles {
		if r == v {
			b.LandedVehicles = append(b.LandedVehicles[:i], b.LandedVehicles[i+1:]...)
			return
		}
	}
}
