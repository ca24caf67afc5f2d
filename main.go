// Command robots-vs-dinosaurs starts the Robots vs Dinosaurs game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set through the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/robots-vs-dinosaurs/api"
	"github.com/wricardo/robots-vs-dinosaurs/game/config"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
	"github.com/wricardo/robots-vs-dinosaurs/game/session"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
	"github.com/wricardo/robots-vs-dinosaurs/transport/mcp"
	"github.com/wricardo/robots-vs-dinosaurs/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Robots vs Dinosaurs Server"
)

const cleanupInterval = time.Hour

var log = logger.WithComponent("main")

// settings is the resolved process configuration
type settings struct {
	Host            string
	Port            int
	ScenarioDir     string
	DefaultScenario string
	SessionTTL      time.Duration
	LogLevel        string
	LogFormat       string
	NgrokEnabled    bool
	NgrokAuth       string
	NgrokDomain     string
}

func (s settings) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "scenario-dir",
			Value:   "configs",
			Usage:   "Directory containing scenario presets",
			Sources: cli.EnvVars("SCENARIO_DIR", "CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:    "default-scenario",
			Usage:   "Scenario used when a game is created without one",
			Sources: cli.EnvVars("DEFAULT_SCENARIO"),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   24 * time.Hour,
			Usage:   "Drop games not accessed for this long",
			Sources: cli.EnvVars("SESSION_TTL"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text or json)",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func settingsFromCommand(cmd *cli.Command) settings {
	return settings{
		Host:            cmd.String("host"),
		Port:            cmd.Int("port"),
		ScenarioDir:     cmd.String("scenario-dir"),
		DefaultScenario: cmd.String("default-scenario"),
		SessionTTL:      cmd.Duration("session-ttl"),
		LogLevel:        cmd.String("log-level"),
		LogFormat:       cmd.String("log-format"),
		NgrokEnabled:    cmd.Bool("ngrok"),
		NgrokAuth:       cmd.String("ngrok-auth"),
		NgrokDomain:     cmd.String("ngrok-domain"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "robots-vs-dinosaurs",
		Usage:   "Command robots across a grid and clear it of dinosaurs",
		Version: Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioCommand,
			},
		},
		Action: runServerCommand,
	}
}

// main loads .env, then hands the arguments to the CLI.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Error("exiting")
		os.Exit(1)
	}
}

func setupLogging(cfg settings, stdio bool) {
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if stdio {
		// stdout carries the MCP protocol
		logger.SetOutput(os.Stderr)
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := settingsFromCommand(cmd)
	setupLogging(cfg, false)
	log.Infof("Starting %s v%s (mode: server)", AppName, Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gameService, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runHTTPServer(ctx, cfg, gameService)
}

func runStdioCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := settingsFromCommand(cmd)
	setupLogging(cfg, true)
	log.Infof("Starting %s v%s (mode: stdio-mcp)", AppName, Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gameService, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runStdioMCPWithInternalServer(ctx, cfg, gameService)
}

// newRouter combines the REST API and the /mcp proxy endpoint.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg settings, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub, api.WithAppInfo(AppName, Version))

	addr := cfg.addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serverErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?game=<game_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, cfg, mainRouter)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		log.Infof("Received signal: %v. Shutting down...", sig)
	case <-ctx.Done():
	case runErr = <-serverErr:
		log.WithError(runErr).Error("HTTP server failed")
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return runErr
}

// serveNgrok exposes the router through an ngrok tunnel until ctx ends.
func serveNgrok(ctx context.Context, cfg settings, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Infof("Using custom ngrok domain: %s", cfg.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithField("url", ngrokURL).Info("Ngrok tunnel established")
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?game=<game_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// initializeServices wires the scenario and session managers into the game service.
// It also starts a background routine that prunes games idle for longer than the TTL.
func initializeServices(ctx context.Context, cfg settings) (service.GameService, error) {
	configManager, err := config.NewManager(cfg.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if cfg.DefaultScenario != "" {
		if err := configManager.SetDefault(cfg.DefaultScenario); err != nil {
			return nil, fmt.Errorf("failed to set default scenario: %w", err)
		}
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager)

	if cfg.SessionTTL > 0 {
		go sessionCleanupRoutine(ctx, sessionManager, cfg.SessionTTL, cleanupInterval)
	}

	return gameService, nil
}

// sessionCleanupRoutine periodically removes games that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithFields(logrus.Fields{"removed": removed, "ttl": ttl}).Info("Cleaned up expired games")
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; if none answers, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg settings, gameService service.GameService) error {
	externalURL := fmt.Sprintf("http://%s", cfg.addr())
	baseURL := externalURL
	log.Infof("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Infof("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Infof("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{
			Handler: api.NewServer(gameService, hub, api.WithAppInfo(AppName, Version)),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.WithField("api", baseURL).Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
