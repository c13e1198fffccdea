package system

import (
	"github.com/apocgo/server/internal/world"
)

// Teardown ends any battle, removes every vehicle from its map and building
// and drops every entity. Tables are cleared in bulk; references between entities
// need no unlinking.
func Teardown(ws *world.State) {
	if ws.Battle != nil {
		ws.Battle.Finish(ws)
		ws.Battle.Exit(ws)
		ws.Battle = nil
	}
	ws.LeaveBattleTimeline()

	for _, id := range ws.Vehicles.Keys() {
		ws.RemoveVehicle(id)
	}

	ws.Reg.ClearAll()
	ws.AvailableTopics = nil
	ws.Messages.Clear()
	ws.Log.Info("world state torn down")
}
