package world

import (
	"fmt"
	"testing"
)

func TestMessageLogEvictsOldest(t *testing.T) {
	l := NewMessageLog(DefaultMessageCapacity)
	for i := 0; i < 25; i++ {
		l.Push(EventMessage{Text: fmt.Sprintf("m%d", i)})
	}
	if l.Len() != 20 || l.Cap() != 20 {
		t.Fatalf("Len/Cap = %d/%d", l.Len(), l.Cap())
	}
	for i, m := range l.Entries() {
		if want := fmt.Sprintf("m%d", i+5); m.Text != want {
			t.Fatalf("entry %d = %s, want %s", i, m.Text, want)
		}
	}
}

func TestMessageLogPartial(t *testing.T) {
	l := NewMessageLog(0)
	if l.Cap() != DefaultMessageCapacity {
		t.Fatalf("Cap = %d", l.Cap())
	}
	l.Push(EventMessage{Text: "a"})
	l.Push(EventMessage{Text: "b"})
	if got := l.Entries(); len(got) != 2 || got[0].Text != "a" || got[1].Text != "b" {
		t.Fatalf("entries = %+v", got)
	}
	l.Clear()
	if l.Len() != 0 {
		t.Fatal("Clear left entries")
	}
}
