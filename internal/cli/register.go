package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/alvinbaena/pwd-register/internal/session"
	"github.com/alvinbaena/pwd-register/internal/tui"
	"github.com/alvinbaena/pwd-register/internal/util"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	registerCmd = &cobra.Command{
		Use:   "register",
		Short: "Create an account from the command line, with password feedback after every attempt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return registerCommand(cmd.Context())
		},
	}
)

func init() {
	registerCmd.Flags().StringVarP(&username, "username", "u", "", "Username for the new account. Prompted for when omitted.")

	rootCmd.AddCommand(registerCmd)
}

func registerCommand(ctx context.Context) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	if ctx == nil {
		ctx = context.Background()
	}

	if verbose {
		defer util.Stats()()
	}

	client, pipelineCfg, err := newClient(log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := session.New(client, session.Options{Pipeline: pipelineCfg, Logger: log.Logger})
	if err != nil {
		return err
	}
	defer s.Close()

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err = runRegisterSession(ctx, s); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			log.Info().Msgf("Goodbye")
			// No return to avoid the default cobra error message
			return nil
		}
		return err
	}

	return nil
}

func runRegisterSession(ctx context.Context, s *session.Session) error {
	name := username
	if name == "" || !feedback.IdentifierValid(name) {
		prompt := promptui.Prompt{
			Label: "Username",
			Validate: func(input string) error {
				if !feedback.IdentifierValid(input) {
					return fmt.Errorf("username must be at least %d characters", feedback.MinIdentifierLength)
				}
				return nil
			},
		}

		var err error
		if name, err = prompt.Run(); err != nil {
			return err
		}
	}
	s.Post(feedback.IdentifierChanged{Value: name})

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a password")
			}
			return nil
		},
	}

	for {
		password, err := passwordPrompt.Run()
		if err != nil {
			return err
		}

		applied, err := awaitAnalysis(ctx, s, password)
		if err != nil {
			return err
		}
		if !applied {
			log.Error().Msg("the password could not be analyzed, please try again")
			continue
		}

		state := s.State()
		fmt.Fprintln(os.Stdout, tui.RenderAnalysis(state.View))

		if !state.SubmitEnabled {
			log.Warn().Msg("the password does not meet every requirement yet")
			continue
		}

		confirm := promptui.Prompt{Label: feedback.SubmitLabel, IsConfirm: true}
		if _, err = confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				continue
			}
			return err
		}

		s.Post(feedback.SubmitPressed{})
		if err = s.RunUntil(ctx, isEvent(feedback.RegistrationCompletedEvent)); err != nil {
			return err
		}

		n := s.State().Notification
		if n.Kind == feedback.KindSuccess {
			log.Info().Msg(n.Message)
			return nil
		}
		log.Error().Msg(n.Message)
	}
}

// awaitAnalysis submits password and waits until its analysis settles. It
// reports false when the analysis failed, in which case the panels still show
// an earlier password.
func awaitAnalysis(ctx context.Context, s *session.Session, password string) (bool, error) {
	before := s.Stats()
	s.Post(feedback.PasswordChanged{Value: password})

	err := s.RunUntil(ctx, func(ev feedback.Event) bool {
		if ev.Type() != feedback.AnalysisCompletedEvent {
			return false
		}
		st := s.Stats()
		return st.Applied != before.Applied || st.Failed != before.Failed
	})
	if err != nil {
		return false, err
	}

	return s.Stats().Applied != before.Applied, nil
}

func isEvent(t feedback.EventType) func(feedback.Event) bool {
	return func(ev feedback.Event) bool {
		return ev.Type() == t
	}
}
