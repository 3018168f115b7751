// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvinbaena/pwd-register/internal/api"
	"github.com/alvinbaena/pwd-register/internal/config"
	"github.com/alvinbaena/pwd-register/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/likexian/selfca"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve a local password analysis and account creation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand()
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	serveCmd.Flags().BoolVar(&selfTLS, "self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	serveCmd.Flags().Uint16VarP(&port, "port", "p", 3100, "Port to be used by the server")

	viper.BindPFlag("SELF_TLS", serveCmd.Flags().Lookup("self-tls"))
	viper.BindPFlag("TLS_CERT", serveCmd.Flags().Lookup("tls-cert"))
	viper.BindPFlag("TLS_KEY", serveCmd.Flags().Lookup("tls-key"))
	viper.BindPFlag("PORT", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func serveCommand() error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if !verbose && !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter()

	srvAddr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              srvAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			log.Info().Msgf("starting TLS Server on address: %s", srvAddr)
			// service connections with tls certs
			if err := srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("error starting server")
			}
		} else if cfg.SelfTLS {
			log.Info().Msgf("starting TLS Server on address: %s", srvAddr)
			log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
			pair, err := selfSignedPair()
			if err != nil {
				log.Fatal().Err(err).Msg("error using auto self-signed certificate")
			}

			srv.TLSConfig = &tls.Config{
				MinVersion:   tls.VersionTLS12,
				Certificates: []tls.Certificate{pair},
			}

			// service connections with tls config, no need to pass files
			if err = srv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("error starting server")
			}
		} else {
			log.Info().Msgf("starting Server on address: %s", srvAddr)
			log.Warn().Msg("serving plain HTTP. Use --self-tls or --tls-cert and --tls-key to enable TLS")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("error starting server")
			}
		}
	}()

	gracefulShutdown(srv)
	return nil
}

func selfSignedPair() (tls.Certificate, error) {
	caConfig := selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: time.Now(),
		// 30 day self-signed cert.
		NotAfter: time.Now().Add(time.Duration(30*24) * time.Hour),
	}

	// generating the certificate
	certificate, key, err := selfca.GenerateCertificate(caConfig)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating auto self-signed certificate: %w", err)
	}

	return tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	)
}

func gracefulShutdown(srv *http.Server) {
	// Wait for interrupt signal to gracefully shut down the server with
	// a timeout.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server Shutdown.")
	}
	log.Info().Msg("server exiting...")
}
