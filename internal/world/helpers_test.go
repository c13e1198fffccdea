package world

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestState(t *testing.T, rules Rules) (*State, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewState(Options{Seed: 1, Rules: rules}, zap.New(core))
	mustInsert(t, s.Organisations.Insert(s.PlayerID, &Organisation{ID: s.PlayerID, Name: "X-COM"}))
	mustInsert(t, s.Organisations.Insert(s.AliensID, &Organisation{ID: s.AliensID, Name: "Aliens"}))
	mustInsert(t, s.Organisations.Insert(s.CivilianID, &Organisation{ID: s.CivilianID, Name: "Civilians"}))
	mustInsert(t, s.Cities.Insert(s.HumanCityID, &City{ID: s.HumanCityID, Name: "Mega-Primus", Size: Vec3i{X: 100, Y: 100, Z: 10}}))
	return s, logs
}

func mustInsert(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
