package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/jo-hoe/codex/internal/core"
	"github.com/jo-hoe/codex/internal/dispatch"
	"github.com/jo-hoe/codex/internal/frontend"
	"github.com/jo-hoe/codex/internal/metrics"
)

const (
	restartDelay    = time.Second
	shutdownTimeout = 10 * time.Second
	metricsPath     = "/metrics"
	maxBodySize     = "10M"
)

type cmdFlags struct {
	configPath string
	envFile    string
}

func initCmdFlags() *cmdFlags {
	var flags cmdFlags
	pflag.StringVarP(&flags.configPath, "config", "c", "", "Path to the YAML configuration file")
	pflag.StringVarP(&flags.envFile, "env-file", "", ".env", "Optional file with environment variables")
	pflag.Parse()
	return &flags
}

// getConfigPath returns the config location and whether it was set
// explicitly by flag or environment.
func getConfigPath(flagValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath, true
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return "config.yaml", false
	}
	return filepath.Join(cwd, "config.yaml"), false
}

// loadConfig falls back to the defaults when the implicit config file does
// not exist.
func loadConfig(configPath string, explicit bool) (*core.ServiceConfig, error) {
	config, err := core.LoadConfig(configPath)
	if err == nil {
		return config, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", configPath)
		return core.DefaultConfig(), nil
	}
	return nil, err
}

func main() {
	flags := initCmdFlags()

	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", flags.envFile, "error", err)
	}

	configPath, explicit := getConfigPath(flags.configPath)
	config, err := loadConfig(configPath, explicit)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger())

	coreService, err := core.NewCoreService(context.Background(), config)
	if err != nil {
		slog.Error("failed to initialize core service", "error", err)
		os.Exit(1)
	}

	renderer, err := frontend.NewTemplateRenderer()
	if err != nil {
		slog.Error("failed to load views", "error", err)
		os.Exit(1)
	}
	dispatcher := dispatch.New(coreService, coreService.Images(), renderer, config.Thumbnail.MaxWidth)

	server := defineServer()
	server.GET(metricsPath, echo.WrapHandler(metrics.Handler()))
	frontend.NewFrontendService(dispatcher).SetRoutes(server)

	address := fmt.Sprintf(":%d", config.Port)
	slog.Info("starting server", "address", address, "storage_root", coreService.Resolver().StorageRoot())

	// Start HTTP server in a goroutine to allow graceful shutdown
	go serve(server, address)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := coreService.Close(); err != nil {
		slog.Error("core service close error", "error", err)
	}
}

// serve restarts the listener after a loop level failure. The core service
// stays open across restarts.
func serve(e *echo.Echo, address string) {
	for {
		err := e.Start(address)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		slog.Error("http server error", "error", err)
		slog.Info("restarting http server", "delay", restartDelay)
		time.Sleep(restartDelay)
		e.Listener = nil
	}
}

func defineServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Configure request logger to skip the probe endpoint
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == frontend.ProbePath
		},
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogError:     true,
		LogRemoteIP:  true,
		LogHost:      true,
		LogUserAgent: true,
		LogRoutePath: true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"route", v.RoutePath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"host", v.Host,
				"user_agent", v.UserAgent,
			}
			if v.Error != nil {
				slog.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(metrics.Middleware())
	e.Pre(middleware.RemoveTrailingSlash())

	return e
}
