package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/idilsaglam/adminpanel/internal/api"
	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/config"
	"github.com/idilsaglam/adminpanel/internal/session"
	"github.com/idilsaglam/adminpanel/internal/store"
	"github.com/idilsaglam/adminpanel/internal/store/filestore"
	"github.com/idilsaglam/adminpanel/internal/store/keyringstore"
	"github.com/idilsaglam/adminpanel/internal/store/redisstore"
)

// env is everything a subcommand needs, built once per run.
type env struct {
	opt      Options
	sess     *session.Session
	app      *app.App
	location string // where the session lives, for status output
	out, err io.Writer
	closers  []io.Closer
}

func setup(ctx context.Context, opt Options) (*env, error) {
	e := &env{opt: opt, out: opt.Out, err: opt.Err}

	st := opt.Store
	if st == nil {
		var err error
		st, err = e.openStore(opt.Config.Session)
		if err != nil {
			return nil, err
		}
	} else {
		e.location = "custom"
	}

	e.sess = session.New(st,
		session.WithLogger(opt.Logger),
		session.WithGetenv(opt.Getenv),
	)
	if err := e.sess.Init(ctx); err != nil {
		e.close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	client, err := api.NewClient(api.Config{
		BaseURL: opt.Config.API.BaseURL,
		Timeout: opt.Config.API.Timeout,
		Logger:  opt.Logger,
	}, e.sess)
	if err != nil {
		e.close()
		return nil, err
	}

	e.app = app.New(client, e.sess,
		app.WithMessageTTL(opt.Config.UI.MessageTTL),
		app.WithLogger(opt.Logger),
	)
	return e, nil
}

// openStore builds the session backend named in cfg.
func (e *env) openStore(cfg config.SessionConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		e.closers = append(e.closers, client)
		e.location = "redis " + cfg.RedisAddr
		return redisstore.New(client, redisstore.Config{Prefix: cfg.RedisPrefix, TTL: cfg.RedisTTL}), nil
	case config.BackendKeyring:
		e.location = "keyring service " + cfg.KeyringService
		return keyringstore.New(cfg.KeyringService), nil
	case config.BackendMemory:
		e.location = "memory"
		return store.NewMemoryStore(), nil
	default:
		fs, err := filestore.New(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("session dir: %w", err)
		}
		e.location = fs.Path()
		return fs, nil
	}
}

func (e *env) close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.opt.Logger.Warn("close", "error", err)
		}
	}
	e.closers = nil
}
