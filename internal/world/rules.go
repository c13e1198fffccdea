package world

// Rules supplies the tunable formulas behind the epoch cascades. The
// scripting engine implements it from Lua; StaticRules is a fixed-value
// implementation for tools and tests.
type Rules interface {
	// TakeoverChance is the percent chance that one take-over attempt on
	// the organisation succeeds.
	TakeoverChance(o *Organisation) int
	// DetectionChance is the percent chance that one detection attempt on
	// an infested building succeeds.
	DetectionChance(b *Building, difficulty int) int
	// InfiltrationDelta is the hourly change of an organisation's
	// infiltration given how many of its buildings hold aliens.
	InfiltrationDelta(o *Organisation, infestedBuildings int) int
	// BuildingIncome is what a building pays its owner each day.
	BuildingIncome(b *Building) int64
	// ResearchRate is the man-hours a lab produces per game hour.
	ResearchRate(lab *ResearchLab, assigned int) int
}

// StaticRules returns the same values whatever the input.
type StaticRules struct {
	Takeover     int
	Detection    int
	Infiltration int
	Income       int64
	Research     int
}

func (r StaticRules) TakeoverChance(*Organisation) int         { return r.Takeover }
func (r StaticRules) DetectionChance(*Building, int) int       { return r.Detection }
func (r StaticRules) InfiltrationDelta(*Organisation, int) int { return r.Infiltration }
func (r StaticRules) BuildingIncome(*Building) int64           { return r.Income }
func (r StaticRules) ResearchRate(*ResearchLab, int) int       { return r.Research }
