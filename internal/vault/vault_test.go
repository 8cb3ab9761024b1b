package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/taisys-technologies/voc-vault/dev/tokenmover"
	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	"github.com/taisys-technologies/voc-vault/internal/infra/audit"
	"github.com/taisys-technologies/voc-vault/internal/settings"
	"github.com/taisys-technologies/voc-vault/internal/vault"
)

var (
	adminAddr     = common.HexToAddress("0x01")
	setterAddr    = common.HexToAddress("0x02")
	smallCaller   = common.HexToAddress("0x03")
	noLimitCaller = common.HexToAddress("0x04")
	strangerAddr  = common.HexToAddress("0x05")
	ownerAddr     = common.HexToAddress("0x07")
	trustedDest   = common.HexToAddress("0x21")
	generalDest   = common.HexToAddress("0x22")
	otherDest     = common.HexToAddress("0x23")
	assetAddr     = common.HexToAddress("0x31")
	otherAsset    = common.HexToAddress("0x32")
)

var fixedTime = time.Unix(1_700_000_000, 0)

type fixture struct {
	t        *testing.T
	registry *accesscontrol.Registry
	settings *settings.Service
	mover    *tokenmover.Mock
	sink     *audit.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sink := audit.NewMemorySink()
	reg, err := accesscontrol.NewRegistry(adminAddr, sink)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, reg.Grant(ctx, adminAddr, domain.RoleSetter, setterAddr))
	require.NoError(t, reg.Grant(ctx, adminAddr, domain.RoleSmallAmountTransfer, smallCaller))
	require.NoError(t, reg.Grant(ctx, adminAddr, domain.RoleNoLimitTransfer, noLimitCaller))

	return &fixture{
		t:        t,
		registry: reg,
		settings: settings.NewService(reg, settings.NewMemoryBackend(), sink),
		mover:    tokenmover.NewMock(),
		sink:     sink,
	}
}

func (f *fixture) params() vault.Params {
	return vault.Params{Prefix: "vault", ParamOwner: ownerAddr}
}

func (f *fixture) transition() *accesscontrol.Transition {
	return accesscontrol.NewTransition(f.registry, f.sink)
}

// setLimit stores one ceiling for the fixture asset under the fixture prefix.
func (f *fixture) setLimit(suffix string, v uint64) {
	f.t.Helper()
	key := settings.Key("vault", assetAddr, suffix)
	err := f.settings.SetUint(context.Background(), setterAddr, ownerAddr, key, uint256.NewInt(v))
	require.NoError(f.t, err)
}

// newListVault builds the explicit-list variant with one supported asset,
// one trusted destination and one general destination.
func newListVault(t *testing.T) (*vault.ListVault, *fixture) {
	t.Helper()
	f := newFixture(t)
	v := vault.NewListVault(f.params(), f.registry, f.transition(), f.settings, f.mover, f.sink)

	ctx := context.Background()
	require.NoError(t, v.AddAsset(ctx, setterAddr, assetAddr))
	require.NoError(t, v.AddTrusted(ctx, setterAddr, trustedDest))
	require.NoError(t, v.AddGeneral(ctx, setterAddr, generalDest))
	f.sink.Reset()
	return v, f
}

// newMerkleVault builds the commitment variant with one supported asset and
// both roots still zero.
func newMerkleVault(t *testing.T) (*vault.MerkleVault, *fixture) {
	t.Helper()
	f := newFixture(t)
	v := vault.NewMerkleVault(f.params(), f.registry, f.transition(), f.settings, f.mover, f.sink)

	require.NoError(t, v.AddAsset(context.Background(), setterAddr, assetAddr))
	f.sink.Reset()
	return v, f
}

func request(dest, asset common.Address, amount uint64) domain.TransferRequest {
	return domain.TransferRequest{
		Asset:       asset,
		Destination: dest,
		Amount:      uint256.NewInt(amount),
		Operation:   "payout-batch-7",
		Timestamp:   fixedTime,
	}
}
