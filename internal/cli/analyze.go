package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/alvinbaena/pwd-register/internal/tui"
	"github.com/alvinbaena/pwd-register/internal/util"
	"github.com/alvinbaena/pwd-register/pkg/analysis"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	analyzeCmd = &cobra.Command{
		Use:   "analyze [PASSWORD]",
		Short: "Analyze the strength of a password once",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return analyzeCommand(cmd.Context(), "")
			}
			return analyzeCommand(cmd.Context(), args[0])
		},
	}
)

func init() {
	analyzeCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode. Keeps prompting for passwords until ^C.")

	rootCmd.AddCommand(analyzeCmd)
}

func analyzeCommand(ctx context.Context, password string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	if ctx == nil {
		ctx = context.Background()
	}

	if verbose {
		defer util.Stats()()
	}

	client, _, err := newClient(log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if !interactive {
		return printAnalysis(ctx, client, password)
	}

	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a valid password")
			}
			return nil
		},
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	for {
		result, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				log.Info().Msgf("Goodbye")
			} else {
				log.Error().Err(err).Msgf("Error during interactive session")
			}
			// No return to avoid the default cobra error message
			return nil
		}

		if err = printAnalysis(ctx, client, result); err != nil {
			log.Error().Err(err).Msg("Error during analysis")
		}
	}
}

func printAnalysis(ctx context.Context, client *analysis.Client, password string) error {
	res, err := client.Analyze(ctx, password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, tui.RenderAnalysis(feedback.Render(res)))
	return err
}
