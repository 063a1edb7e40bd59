package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tagbot/internal/app"
	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/store"
)

func main() {
	cfgPath := model.DefaultConfigPath()
	if env := os.Getenv("TAGBOT_CONFIG"); env != "" {
		cfgPath = env
	}

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tagbot: %v\n", err)
		os.Exit(1)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tagbot: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	s.SetCascadeDelete(cfg.Matcher.CascadeDelete)

	p := tea.NewProgram(app.New(s, cfg, cfgPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tagbot: %v\n", err)
		os.Exit(1)
	}
}
