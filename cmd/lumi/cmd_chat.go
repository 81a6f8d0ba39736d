package main

import (
	"os"
	"os/signal"
	"syscall"

	"lumi/cmd/lumi/chat"
	"lumi/internal/logging"
	"lumi/internal/system"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runChat boots the stack and runs the TUI. A boot failure returns before any
// screen is drawn.
func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := system.Boot(ctx, bootConfig())
	if err != nil {
		return err
	}
	defer rt.Close()

	ui := appConfig.UI
	model := chat.New(chat.Config{
		Loop:        rt.Loop,
		Title:       ui.Title,
		Placeholder: ui.Placeholder,
		Theme:       ui.Theme,
		CharLimit:   ui.CharLimit,
		Usage:       rt.Usage,
		Context:     ctx,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	err = g.Wait()
	logging.UI("chat closed after %d turns", rt.Session.Turns())
	return err
}
