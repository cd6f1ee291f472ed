// Package app provides the application initialization and wiring.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/spf13/viper"

	httpserver "hytalepanel/internal/adapters/in/http"
	"hytalepanel/internal/adapters/in/ws"
	"hytalepanel/internal/adapters/out/compose"
	"hytalepanel/internal/adapters/out/docker"
	"hytalepanel/internal/adapters/out/modtale"
	"hytalepanel/internal/adapters/out/serverstore"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/boundaries/out"

	"hytalepanel/internal/usecase/auth"
	"hytalepanel/internal/usecase/download"
	"hytalepanel/internal/usecase/files"
	"hytalepanel/internal/usecase/mods"
	"hytalepanel/internal/usecase/registry"
	"hytalepanel/internal/usecase/session"
	"hytalepanel/internal/usecase/update"
)

// Config holds the application configuration.
type Config struct {
	Server struct {
		Addr    string `mapstructure:"addr"`
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   struct {
			Enabled    bool   `mapstructure:"enabled"`
			Path       string `mapstructure:"path"`
			MaxSize    int    `mapstructure:"max_size"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAge     int    `mapstructure:"max_age"`
		} `mapstructure:"file"`
	} `mapstructure:"logging"`

	Auth struct {
		Username     string `mapstructure:"username"`
		PasswordHash string `mapstructure:"password_hash"` // bcrypt; empty disables auth
		TokenSecret  string `mapstructure:"token_secret"`  // empty generates an ephemeral secret
		TokenExpiry  string `mapstructure:"token_expiry"`  // e.g., "24h"
	} `mapstructure:"auth"`

	Modtale struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"modtale"`

	Registry struct {
		Image    string `mapstructure:"image"`
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"registry"`
}

// panelServices holds the wired services behind the HTTP and websocket surfaces.
type panelServices struct {
	store       *serverstore.Store
	runtime     *docker.Runtime
	catalog     *modtale.Client
	registrySvc *registry.Service
	fileSvc     *files.Service
	modSvc      *mods.Service
	downloadSvc *download.Service
	updateSvc   *update.Service
	authSvc     *auth.Service
	log         zerowrap.Logger
}

// Run starts the panel: config, logger, adapters, use cases, HTTP server.
// It blocks until the context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, configPath string) error {
	cfg, err := initConfig(configPath)
	if err != nil {
		return err
	}

	log, cleanup, err := initLogger(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ctx = zerowrap.WithCtx(ctx, log)
	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Msg("starting hytale panel")

	svc, err := createServices(ctx, cfg, log)
	if err != nil {
		return err
	}

	sessionFactory := func(sink out.EventSink) in.Session {
		return session.NewSession(session.Deps{
			Servers:   svc.registrySvc,
			Files:     svc.fileSvc,
			Mods:      svc.modSvc,
			Downloads: svc.downloadSvc,
			Updates:   svc.updateSvc,
			Catalog:   svc.catalog,
			Runtime:   svc.runtime,
			Log:       log,
		}, session.DefaultConfig(), sink)
	}
	wsHandler := ws.NewHandler(sessionFactory, log)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	server := httpserver.NewServer(addr, svc.authSvc, svc.registrySvc, wsHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().
				Str(zerowrap.FieldLayer, "app").
				Err(err).
				Msg("http server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		log.Info().
			Str(zerowrap.FieldLayer, "app").
			Msg("context cancelled, shutting down")
	case sig := <-quit:
		log.Info().
			Str(zerowrap.FieldLayer, "app").
			Str("signal", sig.String()).
			Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown error")
	}

	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Msg("hytale panel shutdown complete")

	return nil
}

// createServices creates the output adapters and use cases.
func createServices(ctx context.Context, cfg Config, log zerowrap.Logger) (*panelServices, error) {
	svc := &panelServices{log: log}
	var err error

	dataDir := cfg.Server.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	if svc.store, err = serverstore.NewStore(dataDir, log); err != nil {
		return nil, log.WrapErr(err, "failed to create server store")
	}

	if svc.runtime, err = createRuntime(ctx, log); err != nil {
		return nil, err
	}

	composeRunner := compose.NewRunner(svc.store, log)
	svc.catalog = createCatalog(cfg, log)

	svc.registrySvc = registry.NewService(registry.Config{
		Image:    cfg.Registry.Image,
		Timezone: cfg.Registry.Timezone,
	}, svc.store, composeRunner, svc.runtime, log)

	svc.fileSvc = files.NewService(svc.store, log)
	svc.modSvc = mods.NewService(svc.runtime, svc.catalog, log)
	svc.downloadSvc = download.NewService(svc.runtime, log)
	svc.updateSvc = update.NewService(svc.runtime, svc.downloadSvc, svc.fileSvc, log)

	if svc.authSvc, err = createAuthService(cfg, log); err != nil {
		return nil, err
	}

	return svc, nil
}

// createRuntime creates the Docker runtime and verifies the daemon is reachable.
func createRuntime(ctx context.Context, log zerowrap.Logger) (*docker.Runtime, error) {
	runtime, err := docker.NewRuntime()
	if err != nil {
		return nil, log.WrapErr(err, "failed to create Docker runtime")
	}

	if err := runtime.Ping(ctx); err != nil {
		return nil, log.WrapErr(err, "Docker is not available")
	}

	dockerVersion, _ := runtime.Version(ctx)
	log.Info().Str("docker_version", dockerVersion).Msg("Docker runtime initialized")

	return runtime, nil
}

// createCatalog creates the modtale catalog client.
// An empty API key leaves mod browsing disabled; installed-mod
// management keeps working without it.
func createCatalog(cfg Config, log zerowrap.Logger) *modtale.Client {
	var opts []modtale.Option
	if cfg.Modtale.BaseURL != "" {
		opts = append(opts, modtale.WithBaseURL(cfg.Modtale.BaseURL))
	}

	if cfg.Modtale.APIKey == "" {
		log.Info().Msg("modtale API key not configured, mod catalog disabled")
	}

	return modtale.NewClient(cfg.Modtale.APIKey, log, opts...)
}

// createAuthService creates the authentication service.
func createAuthService(cfg Config, log zerowrap.Logger) (*auth.Service, error) {
	authCfg := auth.Config{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
	}

	if cfg.Auth.TokenExpiry != "" {
		expiry, err := time.ParseDuration(cfg.Auth.TokenExpiry)
		if err != nil {
			return nil, fmt.Errorf("invalid auth.token_expiry %q: %w", cfg.Auth.TokenExpiry, err)
		}
		authCfg.TokenExpiry = expiry
	}

	if cfg.Auth.TokenSecret != "" {
		authCfg.TokenSecret = []byte(cfg.Auth.TokenSecret)
	} else {
		secret, err := randomTokenHex(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		authCfg.TokenSecret = []byte(secret)
		if authCfg.PasswordHash != "" {
			log.Warn().Msg("auth.token_secret not set, sessions will not survive a restart")
		}
	}

	if authCfg.PasswordHash == "" {
		log.Warn().Msg("authentication disabled, the panel is open to anyone who can reach it")
	} else {
		log.Info().Str("username", authCfg.Username).Msg("authentication enabled")
	}

	return auth.NewService(authCfg, log), nil
}

func randomTokenHex(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// initConfig loads configuration from file.
func initConfig(configPath string) (Config, error) {
	v := viper.New()
	if err := loadConfig(v, configPath); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// loadConfig loads configuration from file and sets defaults.
func loadConfig(v *viper.Viper, configPath string) error {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.data_dir", DefaultDataDir())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.max_size", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.token_expiry", "24h")
	v.SetDefault("modtale.api_key", "")
	v.SetDefault("registry.image", registry.DefaultConfig().Image)
	v.SetDefault("registry.timezone", registry.DefaultConfig().Timezone)

	ConfigureViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HYTALEPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}

// initLogger initializes the zerowrap logger.
func initLogger(cfg Config) (zerowrap.Logger, func(), error) {
	logConfig := zerowrap.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	if cfg.Logging.File.Enabled {
		logPath := cfg.Logging.File.Path
		if logPath == "" {
			dataDir := cfg.Server.DataDir
			if dataDir == "" {
				dataDir = DefaultDataDir()
			}
			logPath = filepath.Join(dataDir, "logs", "hytalepanel.log")
		}

		log, cleanup, err := zerowrap.NewWithFile(logConfig, zerowrap.FileConfig{
			Enabled:    true,
			Path:       logPath,
			MaxSize:    cfg.Logging.File.MaxSize,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAge:     cfg.Logging.File.MaxAge,
			Compress:   true,
		})
		if err != nil {
			return zerowrap.Default(), nil, fmt.Errorf("failed to create logger with file: %w", err)
		}
		return log, cleanup, nil
	}

	return zerowrap.New(logConfig), nil, nil
}
