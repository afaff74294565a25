package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("54")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDialog = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleQuest = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)

	styleGuidance = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleCombat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("210"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindDialog
	kindQuest
	kindGuidance
	kindCombat
	kindError
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "Quest started:"),
		strings.HasPrefix(line, "Quest updated:"),
		strings.HasPrefix(line, "Quest completed:"),
		strings.HasPrefix(line, "All quests are complete."):
		return kindQuest
	case strings.HasPrefix(line, "Goal:"),
		strings.HasPrefix(line, "Next:"),
		strings.HasPrefix(line, "Choices:"):
		return kindGuidance
	case strings.HasPrefix(line, "You hit"),
		strings.HasPrefix(line, "You miss"),
		strings.HasPrefix(line, "You suffer"),
		strings.HasPrefix(line, "You collapse"),
		strings.Contains(line, "confronts you"),
		strings.Contains(line, " hits you "),
		strings.Contains(line, " damage."):
		return kindCombat
	case strings.HasPrefix(line, "You do not have"),
		strings.HasPrefix(line, "You wander but find no place"),
		strings.HasPrefix(line, "No one by that name"),
		strings.HasPrefix(line, "Hidden paths deny you"):
		return kindError
	case looksLikeSpeech(line):
		return kindDialog
	default:
		return kindNarrative
	}
}

// looksLikeSpeech matches "Name: words" dialog lines without swallowing
// guidance prefixes.
func looksLikeSpeech(line string) bool {
	idx := strings.Index(line, ": ")
	if idx <= 0 || idx > 30 {
		return false
	}
	head := line[:idx]
	return !strings.ContainsAny(head, ".!?")
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDialog:
		return styleDialog.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindGuidance:
		return styleGuidance.Render(line)
	case kindCombat:
		return styleCombat.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
