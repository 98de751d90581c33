package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lab-portal/backend/internal/access"
	"github.com/lab-portal/backend/internal/agent"
	"github.com/lab-portal/backend/internal/api"
	"github.com/lab-portal/backend/internal/auth"
	"github.com/lab-portal/backend/internal/config"
	"github.com/lab-portal/backend/internal/notify"
	"github.com/lab-portal/backend/internal/store"
	"github.com/lab-portal/backend/internal/telemetry"
	"github.com/lab-portal/backend/internal/zerotier"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("PORTAL_CONFIG")
	if configPath == "" {
		configPath = "./portal.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.Storage.DatabasePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("Failed to create data directory: %v\n", err)
			os.Exit(1)
		}
	}

	userStore, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open user store: %v\n", err)
		os.Exit(1)
	}
	defer userStore.Close()

	agentClient := agent.New(cfg.Agent.BaseURL, cfg.AgentTimeout())

	var mailer notify.Mailer
	if cfg.Mail.Endpoint != "" {
		mailer = notify.NewHTTPMailer(cfg.Mail.Endpoint, time.Duration(cfg.Mail.TimeoutSeconds)*time.Second)
	}
	var authorizer zerotier.Authorizer = zerotier.NewNoop()
	if cfg.ZeroTier.BaseURL != "" {
		authorizer = zerotier.New(cfg.ZeroTier.BaseURL, time.Duration(cfg.ZeroTier.TimeoutSeconds)*time.Second)
	}

	accessSvc := access.NewService(access.Config{
		Store:        userStore,
		Uploader:     agentClient,
		Mailer:       mailer,
		Authorizer:   authorizer,
		AdminName:    cfg.Admin.Name,
		AdminEmail:   cfg.Admin.Email,
		SubnetPrefix: cfg.Network.SubnetPrefix,
	})

	authMgr := auth.NewManager(userStore, cfg.SessionTTL())
	handshaker := auth.NewHandshaker(cfg.HandshakeTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background session cleanup
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authMgr.CleanupExpired()
			}
		}
	}()

	poller := telemetry.NewPoller(agentClient, cfg.Agent.StatsFile, cfg.AgentZone(), cfg.PollInterval())
	go poller.Run(ctx)

	h := api.NewHandler(api.Dependencies{
		Store:     userStore,
		Agent:     agentClient,
		Poller:    poller,
		Access:    accessSvc,
		Auth:      authMgr,
		Handshake: handshaker,
		StatsFile: cfg.Agent.StatsFile,
		AgentZone: cfg.AgentZone(),
	})
	wsHandler := api.NewWebSocketHandler(poller)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.EnableRequestLogging {
				return true
			}
			// Don't drown the log in the dashboard's poll traffic
			path := c.Request().URL.Path
			return path == "/api/health" ||
				path == "/api/overview" ||
				strings.HasPrefix(path, "/api/ws/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		Skipper: func(c echo.Context) bool {
			// The handshake await and the telemetry socket block by design
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/ws/") ||
				strings.HasPrefix(path, "/api/auth/handshake/")
		},
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := cfg.Server.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	api.RegisterRoutes(e, h, wsHandler)

	s := &http.Server{
		Addr:         cfg.ServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Lab Server Portal                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.ServerAddr())
	fmt.Printf("║  Agent:     %-46s║\n", cfg.Agent.BaseURL)
	fmt.Printf("║  Database:  %-46s║\n", cfg.Storage.DatabasePath)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Logger.Error(err)
		}
	}()

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		e.Logger.Fatal(err)
	}
}
