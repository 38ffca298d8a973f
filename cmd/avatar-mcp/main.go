package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/auth"
	"github.com/ironsheep/avatar-tools-mcp/internal/config"
	"github.com/ironsheep/avatar-tools-mcp/internal/logging"
	"github.com/ironsheep/avatar-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("avatar-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("starting avatar-tools-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	backends, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	if cfg.HTTP.Addr != "" {
		httpSrv := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: auth.NewRouter(auth.Options{
				SuccessPath: cfg.Auth.SuccessPath,
				ErrorPath:   cfg.Auth.ErrorPath,
				Logger:      logger.Named("auth"),
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("auth callback listening", zap.String("addr", cfg.HTTP.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("auth callback server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	opts := []server.Option{
		server.WithImaging(backends.loader, backends.cropper),
		server.WithLogger(logger.Named("mcp")),
		server.WithVersion(Version),
	}
	if backends.profiles != nil {
		opts = append(opts, server.WithProfiles(backends.profiles))
	}
	return server.New(opts...).Run(ctx)
}

func printHelp() {
	fmt.Println("avatar-tools-mcp - MCP server for profile picture cropping")
	fmt.Println()
	fmt.Println("Usage: avatar-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Configuration is read from ./config.yaml, ./.env and the environment.")
	fmt.Println("Environment variables (prefix " + config.EnvPrefix + "_):")
	fmt.Println("  AVATAR_MCP_LOG_LEVEL=debug            Enable debug logging")
	fmt.Println("  AVATAR_MCP_PROFILE_BACKEND=firestore  Use Firestore for profiles")
	fmt.Println("  AVATAR_MCP_STORAGE_BACKEND=firebase   local, firebase or cloudinary")
	fmt.Println("  AVATAR_MCP_REDIS_ADDR=host:6379       Cache profiles in Redis")
	fmt.Println("  AVATAR_MCP_HTTP_ADDR=:8080            Serve the login callback")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client.")
}
