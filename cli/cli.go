// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for local play.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelana/nightmarket/engine"
	"github.com/kelana/nightmarket/engine/save"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".nightmarket", "saves")
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the game loop: show the opening scene, then prompt → input →
// dispatch → output.
func (c *CLI) Run() {
	for _, entry := range c.Engine.State.History {
		c.printLine(entry.Narrative)
	}
	c.printLine("")
	c.printSuggestions()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Submit(input)
		c.printResult(result)
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/spend":
		c.cmdSpend(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine.State)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	save.ApplySave(c.Engine.State, sd)
	c.Engine.RNG = engine.RestoreRNG(sd.State.RNGSeed, sd.State.RNGPosition)
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.State.TurnCount))
	c.printSuggestions()
}

func (c *CLI) cmdSpend(stat string) {
	if c.Engine.State.SkillPoints <= 0 {
		c.printSystem("No skill points to spend.")
		return
	}
	if stat == "" {
		c.printSystem("Usage: /spend str|dex|int")
		return
	}
	before := c.Engine.State.SkillPoints
	c.Engine.SpendSkillPoint(stat)
	if c.Engine.State.SkillPoints == before {
		c.printSystem("Usage: /spend str|dex|int")
		return
	}
	s := c.Engine.State.Player.Stats
	c.printSystem(fmt.Sprintf("STR %d / DEX %d / INT %d (%d point(s) left)",
		s.Str, s.Dex, s.Int, c.Engine.State.SkillPoints))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]   — Save game (default: quicksave)",
		"  /load [name]   — Load game (default: quicksave)",
		"  /spend <stat>  — Spend a skill point on str, dex, or int",
		"  /quit          — Exit game",
		"  /help          — Show this help",
		"  /state         — Debug: dump current state",
		"",
		"Game commands:",
		"  go to <place>            — Move between market grounds",
		"  talk to <name>           — Start a conversation",
		"  leave conversation       — Step out of a dialog",
		"  search for moon essence  — Distill essence from the night air",
		"  attack [enemy]           — Fight whatever lurks here",
		"  flee                     — Break off a fight",
		"  use <item>               — Drink, throw, or apply an item",
		"  again (g)                — Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Turn: %d", s.TurnCount))
	c.printSystem(fmt.Sprintf("Location: %s", s.Location))
	c.printSystem(fmt.Sprintf("Health: %d  Rep: %d  Level: %d  XP: %d",
		s.Player.Health, s.Player.Reputation, s.Player.Level, s.XP))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	if len(s.Player.Perks) > 0 {
		c.printSystem(fmt.Sprintf("Perks: %v", s.Player.Perks))
	}
	if len(s.Effects) > 0 {
		c.printSystem(fmt.Sprintf("Effects: %v", s.Effects))
	}
	if len(s.Counters) > 0 {
		c.printSystem(fmt.Sprintf("Counters: %v", s.Counters))
	}
	for _, q := range s.Quests {
		c.printSystem(fmt.Sprintf("Quest %s: %s (%s)", q.ID, q.Status, q.StageID))
	}
}

func (c *CLI) printSuggestions() {
	if len(c.Engine.State.Suggested) > 0 {
		c.printLine("Try: " + strings.Join(c.Engine.State.Suggested, " • "))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
