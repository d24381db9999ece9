package main

import (
	"context"
	"io"
	"time"

	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/auth"
	"github.com/jrsteele09/go-hospital-client/chatbot"
	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/jrsteele09/go-hospital-client/internal/config"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/records"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/sessions/filestore"
	"github.com/jrsteele09/go-hospital-client/sessions/redisstore"
	"github.com/jrsteele09/go-hospital-client/sessions/repofake"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
)

// app is everything one invocation needs, wired from config.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	closers []func() error

	sessions     *sessions.Manager
	api          *gateway.Client
	auth         *auth.AuthorizationService
	users        *users.Client
	doctors      *doctors.Client
	patients     *patients.Client
	appointments *appointments.Client
	workflow     *appointments.Service
	records      *records.Service
	chatbot      *chatbot.Client
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrapf(err, "[newApp] config")
	}
	a := &app{cfg: cfg, log: newLogger(cfg, logOut)}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = sessions.NewManager(repo,
		sessions.WithCheckInterval(cfg.GetExpiryCheckInterval()),
		sessions.WithLogger(a.log))
	a.sessions.OnLogout(func(reason sessions.LogoutReason) {
		if reason.Forced() {
			a.log.Debug().Stringer("reason", reason).Msg("session ended")
		}
	})
	a.sessions.Restore()

	userAgent := cfg.GetAppName() + "/" + version
	a.api, err = gateway.New(cfg.GetAPIURL(),
		gateway.WithTokenSource(a.sessions),
		gateway.WithTimeout(cfg.GetHTTPTimeout()),
		gateway.WithUserAgent(userAgent),
		gateway.WithLogger(a.log))
	if err != nil {
		a.close()
		return nil, err
	}
	a.auth, err = auth.NewAuthorizationService(a.api, a.sessions, auth.WithLogger(a.log))
	if err != nil {
		a.close()
		return nil, err
	}
	a.chatbot, err = chatbot.New(cfg.GetChatbotURL(),
		chatbot.WithLogger(a.log),
		chatbot.WithGatewayOptions(gateway.WithUserAgent(userAgent)))
	if err != nil {
		a.close()
		return nil, err
	}

	a.users = users.NewClient(a.api)
	a.doctors = doctors.NewClient(a.api)
	a.patients = patients.NewClient(a.api)
	a.appointments = appointments.NewClient(a.api)
	a.workflow = appointments.NewService(a.api, a.sessions, appointments.WithLogger(a.log))
	a.records = records.NewService(a.api, a.sessions)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (sessions.Repo, error) {
	switch a.cfg.GetSessionStore() {
	case config.SessionStoreRedis:
		store, err := redisstore.New(ctx, a.cfg.GetRedisURL())
		if err != nil {
			return nil, apperrors.Wrapf(err, "[newApp] session store %s", config.SessionStoreRedis)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.SessionStoreMemory:
		return repofake.NewFakeSessionRepo(), nil
	default:
		return filestore.New(a.cfg.GetDataFolder()), nil
	}
}

// close stops the expiry watcher and releases the store. The durable
// session is kept for the next invocation.
func (a *app) close() {
	if a.sessions != nil {
		a.sessions.Close()
	}
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Str("env", cfg.GetEnv()).
		Logger()
}
