package world

import (
	"fmt"

	"github.com/apocgo/server/internal/core/event"
)

var eventFormats = map[event.Kind]string{
	event.KindUfoSpotted:            "UFO spotted: %s",
	event.KindVehicleLaunched:       "%s launched",
	event.KindVehicleLanded:         "%s landed",
	event.KindFacilityCompleted:     "%s completed",
	event.KindAlienDetected:         "Alien activity detected in %s",
	event.KindOrganisationTakenOver: "%s has been taken over by aliens",
	event.KindResearchCompleted:     "Research completed: %s",
	event.KindAgentKilled:           "%s has been killed in action",
	event.KindBaseFounded:           "Base founded: %s",
	event.KindVehicleCrashed:        "%s has crashed",
}

func eventText(kind event.Kind, name string) string {
	if f, ok := eventFormats[kind]; ok {
		return fmt.Sprintf(f, name)
	}
	return name
}

// NewVehicleEvent is located at the vehicle's position.
func NewVehicleEvent(kind event.Kind, v *Vehicle) event.GameEvent {
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectVehicle,
		SubjectID: v.ID,
		Text:      eventText(kind, v.Name),
		Location:  v.Position.Location(),
	}
}

// NewBuildingEvent is located at the centre of the building's bounds.
func NewBuildingEvent(kind event.Kind, b *Building) event.GameEvent {
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectBuilding,
		SubjectID: b.ID,
		Text:      eventText(kind, b.Name),
		Location:  b.Bounds.Centroid(),
	}
}

// NewAgentEvent is located at the agent's battle unit, if it has one.
func NewAgentEvent(kind event.Kind, a *Agent) event.GameEvent {
	loc := event.NoLocation
	if a.Unit != nil {
		loc = a.Unit.Position.Location()
	}
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectAgent,
		SubjectID: a.ID,
		Text:      eventText(kind, a.Name),
		Location:  loc,
	}
}

func baseLocation(b *Base) event.Location {
	if building, ok := b.Building.Get(); ok {
		return building.Bounds.Centroid()
	}
	return event.NoLocation
}

// NewBaseEvent is located at the centre of the base's building.
func NewBaseEvent(kind event.Kind, b *Base) event.GameEvent {
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectBase,
		SubjectID: b.ID,
		Text:      eventText(kind, b.Name),
		Location:  baseLocation(b),
	}
}

// NewFacilityEvent is a base event naming the facility.
func NewFacilityEvent(kind event.Kind, b *Base, f *Facility) event.GameEvent {
	name := f.ID
	if t, ok := f.Type.Get(); ok {
		name = t.Name
	}
	return event.GameEvent{
		Kind:        kind,
		Subject:     event.SubjectBase,
		SubjectID:   b.ID,
		SecondaryID: f.ID,
		Text:        fmt.Sprintf("%s at %s", eventText(kind, name), b.Name),
		Location:    baseLocation(b),
	}
}

func NewOrganisationEvent(kind event.Kind, o *Organisation) event.GameEvent {
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectOrganisation,
		SubjectID: o.ID,
		Text:      eventText(kind, o.Name),
		Location:  event.NoLocation,
	}
}

func NewResearchEvent(kind event.Kind, t *ResearchTopic) event.GameEvent {
	return event.GameEvent{
		Kind:      kind,
		Subject:   event.SubjectResearch,
		SubjectID: t.ID,
		Text:      eventText(kind, t.Name),
		Location:  event.NoLocation,
	}
}
