package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	"github.com/taisys-technologies/voc-vault/internal/settings"
)

var transferStamp = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// seedQuotaPath puts the asset ceilings in place and grants the operator the
// small-amount role, so quota-route transfers can pass.
func seedQuotaPath(t *testing.T, env *testEnv, largeAmount, maxPerDay, maxCountPerDay uint64) {
	t.Helper()
	ctx := context.Background()

	put := func(suffix string, value uint64) {
		if value == 0 {
			return
		}
		key := settings.Key("vault", testAsset, suffix)
		require.NoError(t, env.backend.Put(ctx, testAdmin, key, uint256.NewInt(value)))
	}
	put(settings.SuffixLargeAmount, largeAmount)
	put(settings.SuffixMaxAmountPerDay, maxPerDay)
	put(settings.SuffixMaxCountPerDay, maxCountPerDay)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/roles/grant", roleRequest{
		Caller:  testAdmin.Hex(),
		Role:    "SMALL_AMOUNT_TRANSFER",
		Account: testOperator.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func transferBody(amount string) transferRequest {
	ts := transferStamp
	return transferRequest{
		Caller:      testOperator.Hex(),
		Asset:       testAsset.Hex(),
		Destination: testDest.Hex(),
		Amount:      amount,
		Operation:   "withdraw",
		Timestamp:   &ts,
	}
}

func TestTransferQuotaRoute(t *testing.T) {
	env := setupListServer(t)
	seedQuotaPath(t, env, 1000, 0, 0)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("5"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quota", resp.Route)
	assert.Equal(t, domain.Day(transferStamp), resp.Day)

	calls := env.mover.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testAsset, calls[0].Asset)
	assert.Equal(t, testDest, calls[0].Destination)
	assert.Equal(t, "5", calls[0].Amount.Dec())

	target := fmt.Sprintf("/v1/transfers/usage?destination=%s&at=%s",
		testDest.Hex(), url.QueryEscape(transferStamp.Format(time.RFC3339)))
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage usageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Equal(t, domain.Day(transferStamp), usage.Day)
	assert.Equal(t, "5", usage.Amount)
	assert.Equal(t, uint64(1), usage.Count)
}

func TestTransferTrustedDestination(t *testing.T) {
	env := setupListServer(t)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/lists/trusted", listEntryRequest{
		Caller:  testAdmin.Hex(),
		Address: testDest.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Trusted destinations need no transfer role and no configured
	// ceilings.
	rec = doJSON(t, env.server, http.MethodPost, "/v1/transfers/authorize", transferBody("999999"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"route":"trusted"}`, rec.Body.String())
}

func TestAuthorizeDoesNotCommit(t *testing.T) {
	env := setupListServer(t)
	seedQuotaPath(t, env, 1000, 0, 0)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers/authorize", transferBody("5"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, env.mover.Calls())

	target := fmt.Sprintf("/v1/transfers/usage?destination=%s&at=%s",
		testDest.Hex(), url.QueryEscape(transferStamp.Format(time.RFC3339)))
	rec := doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage usageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Equal(t, uint64(0), usage.Count)
	assert.Equal(t, "0", usage.Amount)
}

func TestTransferRejections(t *testing.T) {
	env := setupListServer(t)
	seedQuotaPath(t, env, 100, 0, 2)

	t.Run("unsupported asset", func(t *testing.T) {
		body := transferBody("5")
		body.Asset = testOther.Hex()
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("caller without role", func(t *testing.T) {
		body := transferBody("5")
		body.Caller = testOther.Hex()
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("amount at large floor", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("100"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed amount", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("5 tokens"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed destination", func(t *testing.T) {
		body := transferBody("5")
		body.Destination = "not-an-address"
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("daily count exhausted", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("1"))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
		rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestTransferMoverFailureRollsBackUsage(t *testing.T) {
	env := setupListServer(t)
	seedQuotaPath(t, env, 1000, 0, 0)
	env.mover.FailWith(errors.New("rpc node down"))

	rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("5"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	target := fmt.Sprintf("/v1/transfers/usage?destination=%s&at=%s",
		testDest.Hex(), url.QueryEscape(transferStamp.Format(time.RFC3339)))
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage usageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Equal(t, uint64(0), usage.Count)
	assert.Equal(t, "0", usage.Amount)
}

func TestCapacityEndpoint(t *testing.T) {
	env := setupListServer(t)
	seedQuotaPath(t, env, 50, 100, 4)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/transfers", transferBody("30"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	target := fmt.Sprintf("/v1/transfers/capacity?destination=%s&asset=%s&at=%s",
		testDest.Hex(), testAsset.Hex(), url.QueryEscape(transferStamp.Format(time.RFC3339)))
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var capacity capacityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &capacity))
	assert.True(t, capacity.AmountBounded)
	assert.Equal(t, "70", capacity.Amount)
	assert.True(t, capacity.CountBounded)
	assert.Equal(t, uint64(3), capacity.Count)

	t.Run("unsupported asset", func(t *testing.T) {
		target := fmt.Sprintf("/v1/transfers/capacity?destination=%s&asset=%s",
			testDest.Hex(), testOther.Hex())
		rec := doJSON(t, env.server, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unbounded dimensions", func(t *testing.T) {
		fresh := setupListServer(t)
		target := fmt.Sprintf("/v1/transfers/capacity?destination=%s&asset=%s",
			testDest.Hex(), testAsset.Hex())
		rec := doJSON(t, fresh.server, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"amount_bounded":false,"count":0,"count_bounded":false}`, rec.Body.String())
	})
}
