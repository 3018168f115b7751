// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-register/internal/config"
	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/alvinbaena/pwd-register/pkg/analysis"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwdreg [COMMAND] [OPTIONS]",
		Short: "Create an account with live password strength feedback",
		Long: "Sign up against a password analysis service. Every keystroke is debounced before it is analyzed, " +
			"and an account can only be created once the password passes every requirement. " +
			"This command also serves a local stand-in for the analysis service",
		SilenceUsage: true,
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "",
		"Base URL of the analysis service. Defaults to $"+config.EnvPrefix+"_SERVICE_URL or http://localhost:3100")

	viper.BindPFlag("SERVICE_URL", rootCmd.PersistentFlags().Lookup("service-url"))
}

func Execute() error {
	return rootCmd.Execute()
}

// newClient builds the analysis client and the pipeline settings from the
// environment and flags.
func newClient(logger zerolog.Logger) (*analysis.Client, feedback.Config, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, feedback.Config{}, err
	}

	client, err := analysis.NewClient(cfg.ServiceURL, analysis.Options{
		Timeout:     cfg.RequestTimeout,
		RetryMax:    cfg.RetryMax,
		CacheSize:   cfg.CacheSize,
		InsecureTLS: cfg.InsecureTLS,
		Logger:      logger,
	})
	if err != nil {
		return nil, feedback.Config{}, err
	}

	return client, feedback.Config{Debounce: cfg.Debounce, NotificationTTL: cfg.NotificationTTL}, nil
}
