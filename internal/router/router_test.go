package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tonesnap/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	resumed int
	left    int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func (s *stubScreen) Resume() tea.Cmd {
	s.resumed++
	return nil
}

func (s *stubScreen) Leave() { s.left++ }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestPopResumesScreenBelow(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Update(PushScreenMsg{Screen: &stubScreen{title: "second"}})
	r.Update(PopScreenMsg{})

	if s1.resumed != 1 {
		t.Errorf("expected first screen resumed once, got %d", s1.resumed)
	}

	r.Update(PopScreenMsg{})
	if s1.resumed != 1 {
		t.Errorf("pop at bottom must not resume, got %d", s1.resumed)
	}
}

func TestPopLeavesTopScreen(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	s2 := &stubScreen{title: "second"}
	r := New(s1)

	r.Update(PushScreenMsg{Screen: s2})
	r.Update(PopScreenMsg{})

	if s2.left != 1 {
		t.Errorf("expected popped screen left once, got %d", s2.left)
	}
	if s1.left != 0 {
		t.Errorf("screen below must not be left, got %d", s1.left)
	}

	r.Update(PopScreenMsg{})
	if s1.left != 0 {
		t.Errorf("pop at bottom must not leave, got %d", s1.left)
	}
}
