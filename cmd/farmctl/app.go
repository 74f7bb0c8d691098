package main

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/config"
	"github.com/mamadbah2/farmdash/internal/service/dashboard"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
	"github.com/mamadbah2/farmdash/pkg/logger"
)

// connectFunc builds the backend client and the token store it reads from.
type connectFunc func(a *app) (farmapi.Client, tokenstore.Store, error)

type app struct {
	out     io.Writer
	connect connectFunc

	envFile   string
	tokenPath string
	verbose   bool

	logger    *zap.Logger
	session   *session.Session
	dashboard *dashboard.Service
}

func newApp(out io.Writer) *app {
	return &app{out: out, connect: connectBackend}
}

// setup runs before every command that talks to the backend.
func (a *app) setup() error {
	if a.session != nil {
		return nil
	}
	if a.logger == nil {
		log, err := logger.NewCLI(a.verbose)
		if err != nil {
			return err
		}
		a.logger = log
	}

	client, tokens, err := a.connect(a)
	if err != nil {
		return err
	}

	sess, err := session.New(client, tokens, a.logger.Named("session"))
	if err != nil {
		return err
	}
	a.session = sess
	a.dashboard = dashboard.NewService(sess, a.logger.Named("dashboard"))
	return nil
}

func connectBackend(a *app) (farmapi.Client, tokenstore.Store, error) {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	path := a.tokenPath
	if path == "" {
		path = cfg.Session.TokenPath
	}

	tokens, err := tokenstore.NewFileStore(path)
	if err != nil {
		return nil, nil, err
	}

	client, err := farmapi.NewClient(cfg.API, tokens, farmapi.WithLogger(a.logger.Named("farmapi")))
	if err != nil {
		return nil, nil, err
	}
	return client, tokens, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
