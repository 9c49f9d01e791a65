package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/service"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/state"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/tui"
)

func main() {
	cfg := config.Load()
	st := state.LoadFile(cfg.StatePath)
	svc := service.New(cfg, librivox.NewClient(cfg), st)

	p := tea.NewProgram(tui.NewModel(svc, cfg.AllowHLS))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := st.SaveFile(); err != nil {
		fmt.Fprintf(os.Stderr, "state save failed: %v\n", err)
	}
}
