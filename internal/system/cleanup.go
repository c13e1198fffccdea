package system

import (
	coresys "github.com/apocgo/server/internal/core/system"
	"github.com/apocgo/server/internal/world"
)

// CleanupSystem clears the epoch flags at the end of a city update.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ uint) {
	s.world.Time.ClearFlags()
}
