package world

import "github.com/apocgo/server/internal/core/event"

// DefaultMessageCapacity is how many messages the log keeps.
const DefaultMessageCapacity = 20

// EventMessage is one line of the in-game message log.
type EventMessage struct {
	Time     GameTime
	Text     string
	Location event.Location
	Kind     event.Kind
}

// NewEventMessage stamps an event with the time it was delivered.
func NewEventMessage(t GameTime, ev event.GameEvent) EventMessage {
	return EventMessage{
		Time:     t,
		Text:     ev.Text,
		Location: ev.Location,
		Kind:     ev.Kind,
	}
}

// MessageLog keeps the most recent messages in a fixed-size ring.
// Pushing into a full log evicts the oldest entry.
type MessageLog struct {
	buf  []EventMessage
	head int // index of the oldest entry
	size int
}

func NewMessageLog(capacity int) *MessageLog {
	if capacity <= 0 {
		capacity = DefaultMessageCapacity
	}
	return &MessageLog{buf: make([]EventMessage, capacity)}
}

func (l *MessageLog) Push(m EventMessage) {
	if l.size < len(l.buf) {
		l.buf[(l.head+l.size)%len(l.buf)] = m
		l.size++
		return
	}
	l.buf[l.head] = m
	l.head = (l.head + 1) % len(l.buf)
}

// Entries returns the messages oldest-first.
func (l *MessageLog) Entries() []EventMessage {
	out := make([]EventMessage, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

func (l *MessageLog) Len() int { return l.size }
func (l *MessageLog) Cap() int { return len(l.buf) }

func (l *MessageLog) Clear() {
	l.head = 0
	l.size = 0
}
