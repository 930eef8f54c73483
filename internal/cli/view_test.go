package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/series"
)

func viewTestPlan(t *testing.T) *optimize.Result {
	t.Helper()
	s, err := series.New(100, 100, 1)
	if err != nil {
		t.Fatalf("series.New error: %v", err)
	}
	plan, err := optimize.Optimize(optimize.Config{
		Series:  s,
		Targets: layout.Targets{WindowSpan: 10, StepDistance: 5},
	})
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if len(plan.Windows) < 2 {
		t.Fatalf("need at least 2 windows for navigation, got %d", len(plan.Windows))
	}
	return plan
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestViewModelNavigation(t *testing.T) {
	m := newViewModel(viewTestPlan(t), "plan.json")

	next, _ := m.Update(keyMsg("down"))
	m = next.(viewModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(viewModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}

	// Up at the top stays put.
	next, _ = m.Update(keyMsg("up"))
	m = next.(viewModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	// G jumps to the end, g back to the start.
	next, _ = m.Update(keyMsg("G"))
	m = next.(viewModel)
	if m.cursor != len(m.plan.Windows)-1 {
		t.Errorf("cursor = %d after G, want %d", m.cursor, len(m.plan.Windows)-1)
	}
	next, _ = m.Update(keyMsg("g"))
	m = next.(viewModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after g, want 0", m.cursor)
	}
}

func TestViewModelQuit(t *testing.T) {
	m := newViewModel(viewTestPlan(t), "plan.json")

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd() = %v, want QuitMsg", msg)
	}
}

func TestViewModelScrollFollowsCursor(t *testing.T) {
	m := newViewModel(viewTestPlan(t), "plan.json")
	m.height = chromeRows + 3 // three visible rows

	var next tea.Model = m
	for i := 0; i < 5; i++ {
		next, _ = next.(viewModel).Update(keyMsg("down"))
	}
	m = next.(viewModel)
	if m.cursor < m.offset || m.cursor >= m.offset+m.listHeight() {
		t.Errorf("cursor %d outside visible window [%d, %d)", m.cursor, m.offset, m.offset+m.listHeight())
	}
}

func TestViewModelView(t *testing.T) {
	plan := viewTestPlan(t)
	m := newViewModel(plan, "plan.json")

	out := m.View()
	if !strings.Contains(out, "plan.json") {
		t.Error("view should show the file name")
	}
	if !strings.Contains(out, "span") {
		t.Error("view should list window spans")
	}

	empty := newViewModel(&optimize.Result{Mode: optimize.ModeGreedy}, "empty.json")
	if out := empty.View(); !strings.Contains(out, "no windows") {
		t.Error("empty plan view should say so")
	}
}
