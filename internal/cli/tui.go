package cli

import (
	"context"

	"github.com/alvinbaena/pwd-register/internal/tui"
	"github.com/alvinbaena/pwd-register/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const debugLogFile = "pwdreg-debug.log"

var (
	tuiCmd = &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive sign-up form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tuiCommand(cmd.Context())
		},
	}
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func tuiCommand(ctx context.Context) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	if ctx == nil {
		ctx = context.Background()
	}

	// The terminal belongs to the form while it runs.
	logger := zerolog.Nop()
	if verbose {
		f, err := tea.LogToFile(debugLogFile, "pwdreg")
		if err != nil {
			return err
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	client, pipelineCfg, err := newClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	final, err := tea.NewProgram(tui.New(ctx, client, pipelineCfg, logger), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(tui.Model); ok {
		stats := m.Stats()
		log.Debug().Msgf("analyses issued: %d, applied: %d, stale: %d, failed: %d, registrations: %d",
			stats.Issued, stats.Applied, stats.Stale, stats.Failed, stats.Registrations)
	}

	return nil
}
