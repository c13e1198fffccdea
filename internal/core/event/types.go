package event

// Kind identifies what happened.
type Kind int

const (
	KindUnknown Kind = iota
	KindUfoSpotted
	KindVehicleLaunched
	KindVehicleLanded
	KindFacilityCompleted
	KindAlienDetected
	KindOrganisationTakenOver
	KindResearchCompleted
	KindAgentKilled
	KindBaseFounded
	KindVehicleCrashed
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindUfoSpotted:            "ufo_spotted",
	KindVehicleLaunched:       "vehicle_launched",
	KindVehicleLanded:         "vehicle_landed",
	KindFacilityCompleted:     "facility_completed",
	KindAlienDetected:         "alien_detected",
	KindOrganisationTakenOver: "organisation_taken_over",
	KindResearchCompleted:     "research_completed",
	KindAgentKilled:           "agent_killed",
	KindBaseFounded:           "base_founded",
	KindVehicleCrashed:        "vehicle_crashed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Subject says which kind of entity an event is about. It is the tag of the
// GameEvent variant: the Location field is filled according to it when the
// event is built.
type Subject int

const (
	SubjectNone Subject = iota
	SubjectVehicle
	SubjectBuilding
	SubjectAgent
	SubjectBase
	SubjectOrganisation
	SubjectResearch
)

// Location is a world tile coordinate attached to a message.
type Location struct {
	X, Y, Z int
}

// NoLocation marks events that have no meaningful place on the map.
var NoLocation = Location{X: -1, Y: -1, Z: -1}

func (l Location) Valid() bool { return l != NoLocation }

// GameEvent is a world-visible occurrence pushed to the UI collaborator and
// recorded in the message log.
type GameEvent struct {
	Kind      Kind
	Subject   Subject
	SubjectID string
	// SecondaryID names a second entity involved (the facility of a base
	// event, the building a UFO heads to).
	SecondaryID string
	Text        string
	Location    Location
}
