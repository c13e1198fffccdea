package world

import (
	"sort"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
	"go.uber.org/zap"
)

// ResearchKind is the discipline a topic or lab belongs to.
type ResearchKind int

const (
	ResearchPhysics ResearchKind = iota
	ResearchBioChem
	ResearchEngineering
)

type ResearchTopic struct {
	ID       string
	Name     string
	Kind     ResearchKind
	ManHours int
	Progress int
	Complete bool
	Requires []state.Ref[ResearchTopic]
	Lab      state.Ref[ResearchLab]
}

// Available reports whether the topic can be researched now.
func (t *ResearchTopic) Available() bool {
	if t.Complete {
		return false
	}
	for _, r := range t.Requires {
		dep, ok := r.Get()
		if !ok || !dep.Complete {
			return false
		}
	}
	return true
}

type ResearchLab struct {
	ID       string
	Kind     ResearchKind
	Current  state.Ref[ResearchTopic]
	Assigned []state.Ref[Agent]
	// carry holds sub-hour progress between updates.
	carry uint
}

// Update advances the current topic. A full hour of ticks yields the
// rule-defined man-hours.
func (l *ResearchLab) Update(s *State, ticks uint) {
	topic, ok := l.Current.Get()
	if !ok {
		return
	}
	rate := s.Rules.ResearchRate(l, len(l.Assigned))
	if rate <= 0 {
		return
	}
	l.carry += ticks
	hours := int(l.carry / TicksPerHour)
	l.carry %= TicksPerHour
	if hours == 0 {
		return
	}
	topic.Progress += rate * hours
	if topic.Progress < topic.ManHours {
		return
	}
	topic.Progress = topic.ManHours
	topic.Complete = true
	topic.Lab = state.None[ResearchLab]()
	l.Current = state.None[ResearchTopic]()
	s.Emit(NewResearchEvent(event.KindResearchCompleted, topic))
	s.UpdateTopicList()
}

// UpdateTopicList recomputes which topics are open for research, ordered
// by id.
func (s *State) UpdateTopicList() {
	s.AvailableTopics = s.AvailableTopics[:0]
	s.ResearchTopics.Each(func(id string, t *ResearchTopic) bool {
		if t.Available() {
			s.AvailableTopics = append(s.AvailableTopics, s.ResearchTopics.Ref(id))
		}
		return true
	})
	sort.Slice(s.AvailableTopics, func(i, j int) bool {
		return s.AvailableTopics[i].Less(s.AvailableTopics[j])
	})
}

// NewLab creates an idle lab of the given kind.
func (s *State) NewLab(kind ResearchKind) state.Ref[ResearchLab] {
	id := s.IDs.NewID("RESEARCHLAB_")
	if err := s.ResearchLabs.Insert(id, &ResearchLab{ID: id, Kind: kind}); err != nil {
		s.Log.Error("create lab failed", zap.Error(err))
		return state.None[ResearchLab]()
	}
	return s.ResearchLabs.Ref(id)
}
