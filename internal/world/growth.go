package world

import (
	"fmt"

	"github.com/apocgo/server/internal/core/state"
)

// GrowthEntry is one vehicle type and how many of it a growth step spawns.
type GrowthEntry struct {
	Type  state.Ref[VehicleType]
	Count int
}

// UFOGrowth lists the alien ships arriving in the alien city in a week.
type UFOGrowth struct {
	ID      string
	Week    int
	Entries []GrowthEntry
}

// UFOGrowthID is the growth table id for difficulty and week; week 0 names
// the fallback entry.
func UFOGrowthID(difficulty, week int) string {
	if week <= 0 {
		return fmt.Sprintf("UFOGROWTH_%d_DEFAULT", difficulty)
	}
	return fmt.Sprintf("UFOGROWTH_%d_%d", difficulty, week)
}
