package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kelana/nightmarket/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// player's location, vitals, essence count, and turn.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	locName := s.Location
	if loc, ok := s.Map[s.Location]; ok {
		locName = loc.Name
	}

	left := fmt.Sprintf(" %s | HP %d | Rep %d | Lv %d",
		locName, s.Player.Health, s.Player.Reputation, s.Player.Level)
	if s.SkillPoints > 0 {
		left += fmt.Sprintf(" (+%d sp)", s.SkillPoints)
	}
	if state.InCombat(s) {
		left += fmt.Sprintf(" | vs %s %d HP", s.Combat.Enemy.Name, s.Combat.Enemy.HP)
	}

	right := fmt.Sprintf("Essence %d | T:%d ",
		s.Counters[state.CounterEssence], s.TurnCount)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
