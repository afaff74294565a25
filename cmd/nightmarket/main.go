// Nightmarket is a server-authoritative text adventure set in a market
// that only exists after dark.
// Usage: nightmarket [--version] [--serve] [--plain] [--script <file>] [--name <player>] [content_directory]
package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/kelana/nightmarket/cli"
	"github.com/kelana/nightmarket/engine"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/loader"
	"github.com/kelana/nightmarket/server"
	"github.com/kelana/nightmarket/store"
	"github.com/kelana/nightmarket/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	serve := false
	plain := false
	var contentDir string
	var scriptFile string
	var playerName string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("nightmarket %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--serve":
			serve = true
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--name":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--name requires a player name\n")
				os.Exit(1)
			}
			i++
			playerName = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if contentDir == "" {
		contentDir = cfg.ContentDir
	}

	// Load and compile Lua content.
	defs, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	if serve {
		runServer(cfg, defs)
		return
	}

	eng := engine.New(defs, playerName, "")

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, defs)
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cfg server.Config, defs *state.Defs) {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var saves store.Store
	if cfg.DBPath != "" {
		saves, err = store.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal("opening save store", zap.Error(err))
		}
	} else {
		saves = store.NewMemory()
	}
	defer func() { _ = saves.Close() }()

	srv := server.New(cfg, defs, saves, log)
	log.Info("nightmarket server listening",
		zap.String("addr", cfg.Addr),
		zap.Int("quests", len(defs.Quests)))
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
