package system

// DefaultIncursionVehicleType is the alien ship sent into the human city
// every day.
const DefaultIncursionVehicleType = "VEHICLETYPE_ALIEN_ASSAULT_SHIP"

// CascadePolicy governs how many major events an epoch scan may produce.
type CascadePolicy struct {
	// OneEventPerEpoch stops the organisation take-over scan and the
	// building detection scan at the first entity whose state changes.
	OneEventPerEpoch bool
}

// Config tunes the scheduler and the new-game bootstrap.
type Config struct {
	Cascade                 CascadePolicy
	AlienIncursionsPerDay   int
	IncursionAttempts       int
	IncursionVehicleType    string
	StartingVehiclesPerType int
}

func DefaultConfig() Config {
	return Config{
		Cascade:                 CascadePolicy{OneEventPerEpoch: true},
		AlienIncursionsPerDay:   5,
		IncursionAttempts:       100,
		IncursionVehicleType:    DefaultIncursionVehicleType,
		StartingVehiclesPerType: 5,
	}
}
