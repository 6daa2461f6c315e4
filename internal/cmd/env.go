package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/config"
	"github.com/felixgeelhaar/freementors/internal/log"
	"github.com/felixgeelhaar/freementors/internal/platform"
	"github.com/felixgeelhaar/freementors/internal/security"
	"github.com/felixgeelhaar/freementors/internal/ux"
	"github.com/felixgeelhaar/freementors/internal/version"
)

// env is everything a command needs to talk to the platform
type env struct {
	cfg    *config.Config
	logger *log.Logger
	app    *app.App
	client *platform.Client
	redis  *redis.Client
	out    ux.Formatter

	closers []io.Closer
}

// commandClock times the request indicator; nil means the system clock
var commandClock app.Clock

type envOptions struct {
	// logToFile sends logs to a file even when logging.file is unset
	logToFile bool
}

// newEnv loads the configuration and wires the session store, the API
// client and the activity log. Callers must Close the env.
func newEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := cc.LoadConfig()
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if err := e.setupLogger(cmd, opts); err != nil {
		return nil, err
	}

	e.out, err = ux.NewFormatter(cfg.Output.Format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: cfg.Output.NoColor,
	})
	if err != nil {
		e.Close()
		return nil, err
	}

	persister, err := e.persister()
	if err != nil {
		e.Close()
		return nil, ux.EnhanceError(err)
	}

	client := platform.NewClient(cfg.API.URL)
	client.HTTPClient.Timeout = cfg.API.Timeout
	client.Logger = e.logger
	e.client = client

	audit, err := security.NewAuditLogger(cfg.Storage.AuditPath())
	if err != nil {
		e.logger.WithError(err).Warn("activity log disabled")
		audit = nil
	}

	store := auth.NewStore(client, persister, auth.WithLogger(e.logger))
	e.app, err = app.New(app.Options{
		Store:  store,
		Router: authz.NewRouter(),
		Client: client,
		Audit:  audit,
		Logger: e.logger,
		Clock:  commandClock,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) setupLogger(cmd *cobra.Command, opts envOptions) error {
	logCfg := log.DefaultConfig()
	if level := log.ParseLevel(e.cfg.Logging.Level); level == log.LevelDebug {
		logCfg = log.DevelopmentConfig()
	} else {
		logCfg.Level = level
	}
	logCfg.Format = log.ParseFormat(e.cfg.Logging.Format)
	logCfg.ServiceVersion = version.GetInfo().Version
	logCfg.Output = log.NewOutput(cmd.ErrOrStderr())

	file := e.cfg.Logging.File
	if file == "" && opts.logToFile {
		file = filepath.Join(e.cfg.Storage.Dir, "freementors.log")
	}
	if file != "" {
		output, closer, err := log.OutputFile(file)
		if err != nil {
			return err
		}
		logCfg.Output = output
		e.closers = append(e.closers, closer)
	}

	e.logger = log.New(logCfg)
	log.SetDefaultLogger(e.logger)
	return nil
}

// persister selects the credential backend from storage.backend
func (e *env) persister() (auth.Persister, error) {
	storage := e.cfg.Storage
	switch storage.Backend {
	case config.BackendMemory:
		return auth.NewMemoryPersister(), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: storage.Redis.Addr,
			DB:   storage.Redis.DB,
		})
		e.redis = client
		e.closers = append(e.closers, client)
		return auth.NewRedisPersister(client, storage.Redis.Prefix, storage.Redis.TTL), nil
	default:
		return auth.NewFilePersister(storage.CredentialsPath(), storage.Passphrase)
	}
}

// Initialize resolves the persisted session
func (e *env) Initialize(ctx context.Context) error {
	if err := e.app.Initialize(ctx); err != nil {
		return ux.EnhanceError(err)
	}
	return nil
}

// Enter initializes the session and runs the route guard for path.
// Commands call it before touching a protected screen.
func (e *env) Enter(ctx context.Context, path string) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}
	if _, err := e.app.Enter(path); err != nil {
		return ux.EnhanceError(err)
	}
	return nil
}

// Print writes data in the configured output format
func (e *env) Print(data any) error {
	return e.out.Format(data)
}

// Report prints a successful notice and returns failed ones as errors
func (e *env) Report(cmd *cobra.Command, notice app.Notice) error {
	if err := noticeError(notice); err != nil {
		return err
	}
	if notice.Message != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), notice.Message)
	}
	return nil
}

// Close releases the log file and the redis connection
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && !errors.Is(err, redis.ErrClosed) && e.logger != nil {
			e.logger.WithError(err).Debug("close failed")
		}
	}
	e.closers = nil
}
