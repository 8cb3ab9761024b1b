// Command dev_client exercises a running vault server end to end: it grants
// the roles a transfer needs, registers a demo asset, configures the
// large-amount floor and authorizes a small transfer through the quota route.
// It targets a server started with the default development configuration.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

const (
	devOperator    = "0x2222222222222222222222222222222222222222"
	devAsset       = "0x3333333333333333333333333333333333333333"
	devDestination = "0x4444444444444444444444444444444444444444"
)

type client struct {
	base string
	http *http.Client
	ctx  context.Context
}

func (c *client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c.ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(detail))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	port := os.Getenv("VOCVAULT_HTTP_PORT")
	if port == "" {
		port = "8086"
	}
	// The admin must match vault.initial_admin in the server configuration.
	admin := os.Getenv("VOCVAULT_DEV_ADMIN")
	if admin == "" {
		admin = "0x1111111111111111111111111111111111111111"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := &client{
		base: "http://localhost:" + port,
		http: &http.Client{Timeout: 5 * time.Second},
		ctx:  ctx,
	}
	logger.Info("configuration loaded", "server", c.base, "admin", admin)

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := c.do(http.MethodGet, "/healthz", nil, &health); err != nil {
		logger.Error("health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("health check successful", "status", health.Status, "database", health.Database)

	type roleGrant struct {
		Caller  string `json:"caller"`
		Role    string `json:"role"`
		Account string `json:"account"`
	}
	grants := []roleGrant{
		{Caller: admin, Role: domain.RoleSetter.String(), Account: admin},
		{Caller: admin, Role: domain.RoleSmallAmountTransfer.String(), Account: devOperator},
	}
	for _, grant := range grants {
		if err := c.do(http.MethodPost, "/v1/roles/grant", grant, nil); err != nil {
			logger.Error("role grant failed", "role", grant.Role, "error", err)
			os.Exit(1)
		}
		logger.Info("role granted", "role", grant.Role, "account", grant.Account)
	}

	addAsset := map[string]string{"caller": admin, "asset": devAsset}
	if err := c.do(http.MethodPost, "/v1/assets", addAsset, nil); err != nil {
		logger.Error("asset registration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("asset registered", "asset", devAsset)

	var cfg struct {
		Variant    string `json:"variant"`
		Prefix     string `json:"prefix"`
		ParamOwner string `json:"param_owner"`
	}
	if err := c.do(http.MethodGet, "/v1/config", nil, &cfg); err != nil {
		logger.Error("config read failed", "error", err)
		os.Exit(1)
	}
	logger.Info("config read", "variant", cfg.Variant, "prefix", cfg.Prefix, "param_owner", cfg.ParamOwner)

	// Mirrors settings.Key: <prefix>_<lowercase asset>_<suffix>.
	largeAmountKey := fmt.Sprintf("%s_%s_large_amount", cfg.Prefix, strings.ToLower(devAsset))
	setFloor := map[string]string{
		"caller": admin,
		"owner":  cfg.ParamOwner,
		"key":    largeAmountKey,
		"value":  "1000000",
	}
	if err := c.do(http.MethodPut, "/v1/settings", setFloor, nil); err != nil {
		logger.Error("large-amount floor configuration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("large-amount floor configured", "key", largeAmountKey, "value", "1000000")

	transfer := map[string]string{
		"caller":      devOperator,
		"asset":       devAsset,
		"destination": devDestination,
		"amount":      "5",
		"operation":   "withdraw",
	}
	var decision struct {
		Route string `json:"route"`
		Day   uint64 `json:"day"`
	}
	if err := c.do(http.MethodPost, "/v1/transfers/authorize", transfer, &decision); err != nil {
		logger.Error("transfer authorization failed", "error", err)
		os.Exit(1)
	}
	logger.Info("transfer authorized", "route", decision.Route, "day", decision.Day)

	if err := c.do(http.MethodPost, "/v1/transfers", transfer, &decision); err != nil {
		logger.Error("transfer execution failed", "error", err)
		os.Exit(1)
	}
	logger.Info("transfer executed", "route", decision.Route, "day", decision.Day)

	var usage struct {
		Destination string `json:"destination"`
		Day         uint64 `json:"day"`
		Amount      string `json:"amount"`
		Count       uint64 `json:"count"`
	}
	usagePath := fmt.Sprintf("/v1/transfers/usage?destination=%s", devDestination)
	if err := c.do(http.MethodGet, usagePath, nil, &usage); err != nil {
		logger.Error("usage read failed", "error", err)
		os.Exit(1)
	}
	logger.Info("usage read", "destination", usage.Destination, "amount", usage.Amount, "count", usage.Count)
}
