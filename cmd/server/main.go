package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-booking-auth/internal/config"
	"github.com/jrsteele09/go-booking-auth/internal/metrics"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/jrsteele09/go-booking-auth/link/entityfake"
	"github.com/jrsteele09/go-booking-auth/server"
	"github.com/jrsteele09/go-booking-auth/session/authfake"
	"github.com/jrsteele09/go-booking-auth/token/keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c := config.New()
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	handler, err := newHandler(c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newHandler(c config.Config) (*server.Server, error) {
	keyPair, err := loadSigningKey(c)
	if err != nil {
		return nil, err
	}
	signer := keys.NewKeyPairSigner(keyPair)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	authn := authfake.NewFakeAuthenticator(signer, c.GetIssuer(), c.GetSessionTokenExpiry())
	if err := seedDevUser(authn); err != nil {
		return nil, err
	}

	repo := entityfake.NewFakeEntityRepo()
	seedEntities(repo)

	manager := link.NewManager(link.WithSuffixLength(c.GetLinkSuffixLength()), link.WithMetrics(m))
	resolver, err := link.NewResolver(manager, repo, link.WithResolverMetrics(m))
	if err != nil {
		return nil, err
	}

	return server.New(c, server.Deps{
		Links:    manager,
		Resolver: resolver,
		Authn:    authn,
		Verifier: server.NewTokenVerifier(c.GetIssuer(), signer.PublicKey(), time.Now),
		Registry: reg,
	})
}

func loadSigningKey(c config.Config) (*keys.KeyPair, error) {
	if pemData := c.GetSigningKeyPEM(); pemData != "" {
		keyPair, err := keys.LoadKeyPairFromPEM("session-key", pemData)
		if err != nil {
			return nil, fmt.Errorf("loadSigningKey: %w", err)
		}
		return keyPair, nil
	}
	log.Warn().Msg("SESSION_SIGNING_KEY_PEM not set, generating an ephemeral signing key")
	return keys.GenerateRSAKeyPair("ephemeral", 2048)
}

func seedDevUser(authn *authfake.FakeAuthenticator) error {
	sessionConfig := config.Session{}
	password := sessionConfig.GetDevUserPassword()
	if password == "" {
		buf := make([]byte, 9)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("seedDevUser: %w", err)
		}
		password = hex.EncodeToString(buf)
	}

	email := sessionConfig.GetDevUserEmail()
	if _, err := authn.AddUser("Dev Programmer", email, password, "programmer"); err != nil {
		return fmt.Errorf("seedDevUser: %w", err)
	}
	log.Info().Str("email", email).Str("password", password).Msg("development user ready")
	return nil
}

func seedEntities(repo *entityfake.FakeEntityRepo) {
	for _, e := range []*link.Entity{
		{ID: "concert42", Kind: link.KindConcert, Name: "Jazz à Vienne, soirée d'ouverture"},
		{Kind: link.KindProgrammer, Name: "Salle Pleyel"},
		{Kind: link.KindArtist, Name: "Quatuor Ébène"},
		{Kind: link.KindContract, Name: "Contrat de cession 2024-017"},
	} {
		repo.Upsert(e)
		log.Debug().Str("id", e.ID).Str("kind", string(e.Kind)).Msg("seeded entity")
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
