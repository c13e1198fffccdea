package world

import (
	"github.com/apocgo/server/internal/core/event"
)

// Relation classifies how one organisation regards another.
type Relation int

const (
	RelationAllied Relation = iota
	RelationFriendly
	RelationNeutral
	RelationUnfriendly
	RelationHostile
)

func (r Relation) String() string {
	switch r {
	case RelationAllied:
		return "allied"
	case RelationFriendly:
		return "friendly"
	case RelationUnfriendly:
		return "unfriendly"
	case RelationHostile:
		return "hostile"
	default:
		return "neutral"
	}
}

const (
	relationAlliedAt     = 75
	relationFriendlyAt   = 25
	relationUnfriendlyAt = -25
	relationHostileAt    = -75

	// MaxInfiltration is the ceiling of an organisation's infiltration.
	MaxInfiltration = 200

	// TicksPerTakeoverAttempt spaces take-over rolls.
	TicksPerTakeoverAttempt = TicksPerHour
)

// Organisation is a faction of the city: the player, the aliens, the
// civilians, and every corporation, gang and government department.
type Organisation struct {
	ID      string
	Name    string
	Balance int64
	Income  int64

	// Infiltration in [0, MaxInfiltration]; drives take-over chance.
	Infiltration int
	TakenOver    bool

	TicksTakeOverAttemptAccumulated uint

	// CurrentRelations maps other organisation ids to a value in [-100, 100].
	CurrentRelations map[string]float64
}

// RelationTo returns the raw relation value towards other.
func (o *Organisation) RelationTo(otherID string) float64 {
	return o.CurrentRelations[otherID]
}

// SetRelation stores the raw relation value towards other, clamped.
func (o *Organisation) SetRelation(otherID string, v float64) {
	if o.CurrentRelations == nil {
		o.CurrentRelations = make(map[string]float64)
	}
	if v > 100 {
		v = 100
	}
	if v < -100 {
		v = -100
	}
	o.CurrentRelations[otherID] = v
}

// IsRelatedTo classifies the relation towards other. An organisation is
// always allied with itself.
func (o *Organisation) IsRelatedTo(otherID string) Relation {
	if otherID == o.ID {
		return RelationAllied
	}
	v := o.CurrentRelations[otherID]
	switch {
	case v >= relationAlliedAt:
		return RelationAllied
	case v >= relationFriendlyAt:
		return RelationFriendly
	case v <= relationHostileAt:
		return RelationHostile
	case v <= relationUnfriendlyAt:
		return RelationUnfriendly
	default:
		return RelationNeutral
	}
}

// AddBalance changes the balance, never letting it drop below zero.
func (o *Organisation) AddBalance(delta int64) {
	o.Balance += delta
	if o.Balance < 0 {
		o.Balance = 0
	}
}

// AddInfiltration changes infiltration within [0, MaxInfiltration].
func (o *Organisation) AddInfiltration(delta int) {
	o.Infiltration += delta
	if o.Infiltration < 0 {
		o.Infiltration = 0
	}
	if o.Infiltration > MaxInfiltration {
		o.Infiltration = MaxInfiltration
	}
}

// UpdateTakeOver accumulates ticks and rolls a take-over attempt for every
// full attempt interval. It returns true when the organisation became taken
// over during this call.
func (o *Organisation) UpdateTakeOver(s *State, ticks uint) bool {
	if o.TakenOver || o.ID == s.AliensID || o.ID == s.PlayerID {
		return false
	}
	o.TicksTakeOverAttemptAccumulated += ticks
	for o.TicksTakeOverAttemptAccumulated >= TicksPerTakeoverAttempt {
		o.TicksTakeOverAttemptAccumulated -= TicksPerTakeoverAttempt
		chance := s.Rules.TakeoverChance(o)
		if chance <= 0 {
			continue
		}
		if s.Rng.Intn(100) < chance {
			o.takeOver(s)
			return true
		}
	}
	return false
}

func (o *Organisation) takeOver(s *State) {
	o.TakenOver = true
	o.SetRelation(s.AliensID, 100)
	o.SetRelation(s.PlayerID, -100)
	if aliens := s.Aliens().Resolve(); aliens != nil {
		aliens.SetRelation(o.ID, 100)
	}
	s.Emit(NewOrganisationEvent(event.KindOrganisationTakenOver, o))
}

// UpdateInfiltration applies the hourly infiltration change, driven by how
// many buildings the organisation owns that hold aliens.
func (o *Organisation) UpdateInfiltration(s *State) {
	if o.ID == s.AliensID {
		return
	}
	infested := 0
	s.Buildings.Each(func(_ string, b *Building) bool {
		if b.Owner.ID() == o.ID && b.HasAliens() {
			infested++
		}
		return true
	})
	o.AddInfiltration(s.Rules.InfiltrationDelta(o, infested))
}
