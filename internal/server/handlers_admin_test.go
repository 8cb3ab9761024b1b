package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLifecycle(t *testing.T) {
	env := setupListServer(t)

	grant := roleRequest{
		Caller:  testAdmin.Hex(),
		Role:    "NO_LIMIT_TRANSFER",
		Account: testOperator.Hex(),
	}
	rec := doJSON(t, env.server, http.MethodPost, "/v1/roles/grant", grant)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodGet, "/v1/roles/NO_LIMIT_TRANSFER/members", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members roleMembersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Equal(t, "NO_LIMIT_TRANSFER", members.Role)
	assert.Contains(t, members.Members, testOperator.Hex())

	target := fmt.Sprintf("/v1/roles/NO_LIMIT_TRANSFER/check?account=%s", testOperator.Hex())
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var check roleCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.True(t, check.HasRole)

	rec = doJSON(t, env.server, http.MethodPost, "/v1/roles/revoke", grant)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.False(t, check.HasRole)
}

func TestRoleEndpointRejections(t *testing.T) {
	env := setupListServer(t)

	t.Run("grant by non-admin", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/roles/grant", roleRequest{
			Caller:  testOperator.Hex(),
			Role:    "SETTER",
			Account: testOperator.Hex(),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown role name", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/roles/grant", roleRequest{
			Caller:  testAdmin.Hex(),
			Role:    "JANITOR",
			Account: testOperator.Hex(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(t, env.server, http.MethodGet, "/v1/roles/JANITOR/members", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandover(t *testing.T) {
	env := setupListServer(t)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/admin/transfer", adminInitiateRequest{
		Caller: testAdmin.Hex(),
		Target: testOperator.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	target := fmt.Sprintf("/v1/admin/transfer?admin=%s", testAdmin.Hex())
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending pendingTransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.True(t, pending.Pending)
	assert.Equal(t, testOperator.Hex(), pending.Target)

	rec = doJSON(t, env.server, http.MethodPost, "/v1/admin/transfer/accept", adminAcceptRequest{
		OriginalAdmin: testAdmin.Hex(),
		Caller:        testOperator.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	checkRole := func(account string) bool {
		rec := doJSON(t, env.server, http.MethodGet,
			fmt.Sprintf("/v1/roles/ADMIN/check?account=%s", account), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var check roleCheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
		return check.HasRole
	}
	assert.True(t, checkRole(testOperator.Hex()))
	assert.False(t, checkRole(testAdmin.Hex()))
}

func TestAdminHandoverCancel(t *testing.T) {
	env := setupListServer(t)

	rec := doJSON(t, env.server, http.MethodPost, "/v1/admin/transfer", adminInitiateRequest{
		Caller: testAdmin.Hex(),
		Target: testOperator.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodPost, "/v1/admin/transfer/cancel", adminCancelRequest{
		Caller: testAdmin.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	target := fmt.Sprintf("/v1/admin/transfer?admin=%s", testAdmin.Hex())
	rec = doJSON(t, env.server, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending pendingTransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.False(t, pending.Pending)

	t.Run("accept after cancel", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/admin/transfer/accept", adminAcceptRequest{
			OriginalAdmin: testAdmin.Hex(),
			Caller:        testOperator.Hex(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAssetEndpoints(t *testing.T) {
	env := setupListServer(t)

	rec := doJSON(t, env.server, http.MethodGet, "/v1/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assets addressesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	assert.Equal(t, []string{testAsset.Hex()}, assets.Addresses)

	rec = doJSON(t, env.server, http.MethodPost, "/v1/assets", assetRequest{
		Caller: testAdmin.Hex(),
		Asset:  testOther.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("duplicate add", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/assets", assetRequest{
			Caller: testAdmin.Hex(),
			Asset:  testOther.Hex(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("mutation by non-setter", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPost, "/v1/assets", assetRequest{
			Caller: testOperator.Hex(),
			Asset:  testDest.Hex(),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	rec = doJSON(t, env.server, http.MethodPut, "/v1/assets", assetsReplaceRequest{
		Caller: testAdmin.Hex(),
		Assets: []string{testAsset.Hex()},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	target := fmt.Sprintf("/v1/assets/%s?caller=%s", testAsset.Hex(), testAdmin.Hex())
	rec = doJSON(t, env.server, http.MethodDelete, target, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodGet, "/v1/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"addresses":[]}`, rec.Body.String())
}

func TestConfigEndpoints(t *testing.T) {
	env := setupListServer(t)

	rec := doJSON(t, env.server, http.MethodGet, "/v1/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "list", cfg.Variant)
	assert.Equal(t, "vault", cfg.Prefix)
	assert.Equal(t, testAdmin.Hex(), cfg.ParamOwner)

	rec = doJSON(t, env.server, http.MethodPut, "/v1/config/prefix", prefixRequest{
		Caller: testAdmin.Hex(),
		Prefix: "vault-v2",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodPut, "/v1/config/param-owner", paramOwnerRequest{
		Caller: testAdmin.Hex(),
		Owner:  testOperator.Hex(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, env.server, http.MethodGet, "/v1/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "vault-v2", cfg.Prefix)
	assert.Equal(t, testOperator.Hex(), cfg.ParamOwner)

	t.Run("zero param owner", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPut, "/v1/config/param-owner", paramOwnerRequest{
			Caller: testAdmin.Hex(),
			Owner:  "0x0000000000000000000000000000000000000000",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("prefix change by non-setter", func(t *testing.T) {
		rec := doJSON(t, env.server, http.MethodPut, "/v1/config/prefix", prefixRequest{
			Caller: testOperator.Hex(),
			Prefix: "nope",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("merkle variant reported", func(t *testing.T) {
		merkleEnv := setupMerkleServer(t)
		rec := doJSON(t, merkleEnv.server, http.MethodGet, "/v1/config", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var cfg configResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
		assert.Equal(t, "merkle", cfg.Variant)
	})
}
