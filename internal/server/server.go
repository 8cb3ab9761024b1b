// Package server exposes the vault engine over HTTP. It is a thin surface:
// handlers parse and validate the wire shapes, the engine enforces policy,
// and the error classifier maps engine failures to sanitized responses.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
	"github.com/taisys-technologies/voc-vault/internal/infra/config"
	"github.com/taisys-technologies/voc-vault/internal/infra/persistence"
	"github.com/taisys-technologies/voc-vault/internal/infra/ratelimit"
	"github.com/taisys-technologies/voc-vault/internal/quota"
	"github.com/taisys-technologies/voc-vault/internal/settings"
	"github.com/taisys-technologies/voc-vault/internal/vault"
	customvalidator "github.com/taisys-technologies/voc-vault/pkg/validator"
)

// Vault is the engine surface the HTTP layer drives. Both vault variants
// satisfy it.
type Vault interface {
	HasRole(role domain.Role, account common.Address) bool
	GrantRole(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error
	RevokeRole(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error
	RoleMembers(role domain.Role) []common.Address

	InitiateAdminTransfer(ctx context.Context, caller, target common.Address) error
	AcceptAdminTransfer(ctx context.Context, originalAdmin, caller common.Address) error
	CancelAdminTransfer(ctx context.Context, caller common.Address) error
	PendingAdminTransfer(admin common.Address) (common.Address, bool)

	AddAsset(ctx context.Context, caller, asset common.Address) error
	RemoveAsset(ctx context.Context, caller, asset common.Address) error
	ReplaceAssets(ctx context.Context, caller common.Address, assets []common.Address) error
	Assets() []common.Address
	SupportsAsset(asset common.Address) bool

	SetPrefix(ctx context.Context, caller common.Address, prefix string) error
	SetParamOwner(ctx context.Context, caller, owner common.Address) error
	Config() vault.ConfigView

	Transfer(ctx context.Context, caller common.Address, req domain.TransferRequest) (domain.Decision, error)
	Authorize(ctx context.Context, caller common.Address, req domain.TransferRequest) (domain.Decision, error)
	AvailableCapacity(ctx context.Context, destination, asset common.Address, at time.Time) (domain.Capacity, error)
	UsageAt(destination common.Address, at time.Time) quota.Usage
}

// Dependencies carries everything the server serves. Exactly one of ListVault
// and MerkleVault must be set; it selects which variant routes are mounted.
type Dependencies struct {
	Logger      *slog.Logger
	ListVault   *vault.ListVault
	MerkleVault *vault.MerkleVault
	Settings    *settings.Service
	Events      domain.EventRepository
	Monitor     *persistence.ConnectionMonitor
	Limiter     ratelimit.Limiter

	ServiceVersion string
	BuildCommit    string
}

// Server represents the HTTP server.
type Server struct {
	e          *echo.Echo
	cfg        config.ServerConfig
	logger     *slog.Logger
	classifier *app_errors.ErrorClassifier

	vault       Vault
	listVault   *vault.ListVault
	merkleVault *vault.MerkleVault
	settings    *settings.Service
	events      domain.EventRepository
	monitor     *persistence.ConnectionMonitor

	version string
	commit  string
}

// New creates the HTTP server and mounts all routes.
func New(cfg config.ServerConfig, deps Dependencies) (*Server, error) {
	var engine Vault
	switch {
	case deps.ListVault != nil && deps.MerkleVault != nil:
		return nil, fmt.Errorf("exactly one vault variant must be provided, got both")
	case deps.ListVault != nil:
		engine = deps.ListVault
	case deps.MerkleVault != nil:
		engine = deps.MerkleVault
	default:
		return nil, fmt.Errorf("exactly one vault variant must be provided, got none")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validate := validator.New()
	if err := customvalidator.RegisterCustomValidators(validate); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	e.Validator = &requestValidator{validate: validate}

	s := &Server{
		e:           e,
		cfg:         cfg,
		logger:      deps.Logger,
		classifier:  app_errors.NewErrorClassifier(deps.Logger),
		vault:       engine,
		listVault:   deps.ListVault,
		merkleVault: deps.MerkleVault,
		settings:    deps.Settings,
		events:      deps.Events,
		monitor:     deps.Monitor,
		version:     deps.ServiceVersion,
		commit:      deps.BuildCommit,
	}

	e.Use(RequestLogger(deps.Logger))
	if cfg.RateLimiter.Enabled && deps.Limiter != nil {
		e.Use(RateLimit(deps.Limiter))
	}

	e.GET("/healthz", s.getHealth)

	g := e.Group("/v1")

	g.POST("/transfers", s.postTransfer)
	g.POST("/transfers/authorize", s.postAuthorize)
	g.GET("/transfers/capacity", s.getCapacity)
	g.GET("/transfers/usage", s.getUsage)

	g.POST("/roles/grant", s.postGrantRole)
	g.POST("/roles/revoke", s.postRevokeRole)
	g.GET("/roles/:role/members", s.getRoleMembers)
	g.GET("/roles/:role/check", s.getRoleCheck)

	g.POST("/admin/transfer", s.postInitiateAdminTransfer)
	g.POST("/admin/transfer/accept", s.postAcceptAdminTransfer)
	g.POST("/admin/transfer/cancel", s.postCancelAdminTransfer)
	g.GET("/admin/transfer", s.getPendingAdminTransfer)

	g.GET("/assets", s.getAssets)
	g.POST("/assets", s.postAsset)
	g.PUT("/assets", s.putAssets)
	g.DELETE("/assets/:address", s.deleteAsset)

	g.GET("/config", s.getConfig)
	g.PUT("/config/prefix", s.putPrefix)
	g.PUT("/config/param-owner", s.putParamOwner)

	if s.listVault != nil {
		g.GET("/lists/:kind", s.getList)
		g.POST("/lists/:kind", s.postListEntry)
		g.PUT("/lists/:kind", s.putList)
		g.DELETE("/lists/:kind/:address", s.deleteListEntry)
	}
	if s.merkleVault != nil {
		g.GET("/roots/:kind", s.getRoot)
		g.PUT("/roots/:kind", s.putRoot)
		g.POST("/roots/:kind/verify", s.postVerifyMembership)
	}

	if s.settings != nil {
		g.PUT("/settings", s.putSetting)
		g.GET("/settings/:owner", s.getSettings)
		g.GET("/settings/:owner/:key", s.getSetting)
		g.DELETE("/settings/:owner/:key", s.deleteSetting)
	}
	if s.events != nil {
		g.GET("/events/:name", s.getEvents)
	}

	return s, nil
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	if s.cfg.TLS.Enabled {
		return s.e.StartTLS(addr, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	}
	return s.e.Start(addr)
}

// Shutdown stops the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Run starts the server and waits for a signal or context cancellation to
// stop it.
func (s *Server) Run(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "port", s.cfg.Port, "tls", s.cfg.TLS.Enabled)
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to start http server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down server")
	case sig := <-sigChan:
		s.logger.Info("received signal, shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) getHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Database: "disabled"}
	if s.monitor != nil {
		if s.monitor.IsHealthy() {
			resp.Database = "up"
		} else {
			resp.Database = "down"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// fail classifies err, logs it with full context and returns the sanitized
// HTTP error.
func (s *Server) fail(c echo.Context, operation string, err error) error {
	classified := s.classifier.Classify(err, operation)
	return s.classifier.LogAndSanitize(c.Request().Context(), classified)
}
