package accesscontrol_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
	"github.com/taisys-technologies/voc-vault/internal/infra/audit"
)

var successorAddr = common.HexToAddress("0x09")

func newTransition(t *testing.T) (*accesscontrol.Registry, *accesscontrol.Transition, *audit.MemorySink) {
	t.Helper()
	reg, sink := newRegistry(t)
	return reg, accesscontrol.NewTransition(reg, sink), sink
}

func TestInitiateRequiresAdmin(t *testing.T) {
	_, tr, _ := newTransition(t)

	err := tr.Initiate(context.Background(), outsiderAddr, successorAddr)
	assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
}

func TestInitiateRejectsInvalidTargets(t *testing.T) {
	reg, tr, _ := newTransition(t)
	ctx := context.Background()

	assert.ErrorIs(t, tr.Initiate(ctx, adminAddr, common.Address{}), app_errors.ErrInvalidTarget)
	assert.ErrorIs(t, tr.Initiate(ctx, adminAddr, adminAddr), app_errors.ErrInvalidTarget)

	// A target that already holds ADMIN is not a valid successor.
	require.NoError(t, reg.Grant(ctx, adminAddr, domain.RoleAdmin, outsiderAddr))
	assert.ErrorIs(t, tr.Initiate(ctx, adminAddr, outsiderAddr), app_errors.ErrInvalidTarget)
}

func TestInitiateTwiceFailsAlreadyPending(t *testing.T) {
	_, tr, _ := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	err := tr.Initiate(ctx, adminAddr, outsiderAddr)
	assert.ErrorIs(t, err, app_errors.ErrAlreadyPending)
}

func TestAcceptByWrongCaller(t *testing.T) {
	_, tr, _ := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	err := tr.Accept(ctx, adminAddr, outsiderAddr)
	assert.ErrorIs(t, err, app_errors.ErrWrongCaller)

	// The handover is still open for the real successor.
	pending, ok := tr.Pending(adminAddr)
	require.True(t, ok)
	assert.Equal(t, successorAddr, pending)
}

func TestAcceptWithoutPending(t *testing.T) {
	_, tr, _ := newTransition(t)

	err := tr.Accept(context.Background(), adminAddr, successorAddr)
	assert.ErrorIs(t, err, app_errors.ErrNotPending)
}

func TestAcceptHandsOverAdmin(t *testing.T) {
	reg, tr, sink := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	require.NoError(t, tr.Accept(ctx, adminAddr, successorAddr))

	assert.True(t, reg.HasRole(domain.RoleAdmin, successorAddr))
	assert.False(t, reg.HasRole(domain.RoleAdmin, adminAddr))
	assert.Equal(t, []common.Address{successorAddr}, reg.Members(domain.RoleAdmin))

	_, ok := tr.Pending(adminAddr)
	assert.False(t, ok)

	accepted := sink.Named("admin_transfer_accepted")
	require.Len(t, accepted, 1)
	assert.Equal(t, domain.AdminTransferAccepted{From: adminAddr, To: successorAddr}, accepted[0])
}

func TestAcceptedAdminTakesOverGovernance(t *testing.T) {
	reg, tr, _ := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	require.NoError(t, tr.Accept(ctx, adminAddr, successorAddr))

	require.NoError(t, reg.Grant(ctx, successorAddr, domain.RoleSetter, setterAddr))
	assert.ErrorIs(t, reg.Grant(ctx, adminAddr, domain.RoleSetter, outsiderAddr), app_errors.ErrUnauthorized)
}

func TestCancelRequiresAdmin(t *testing.T) {
	_, tr, _ := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	assert.ErrorIs(t, tr.Cancel(ctx, outsiderAddr), app_errors.ErrUnauthorized)
}

func TestCancelWithoutPending(t *testing.T) {
	_, tr, _ := newTransition(t)

	err := tr.Cancel(context.Background(), adminAddr)
	assert.ErrorIs(t, err, app_errors.ErrNotPending)
}

func TestCancelReopensTransition(t *testing.T) {
	reg, tr, sink := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	require.NoError(t, tr.Cancel(ctx, adminAddr))

	_, ok := tr.Pending(adminAddr)
	assert.False(t, ok)
	assert.True(t, reg.HasRole(domain.RoleAdmin, adminAddr))

	canceled := sink.Named("admin_transfer_canceled")
	require.Len(t, canceled, 1)
	assert.Equal(t, domain.AdminTransferCanceled{From: adminAddr, To: successorAddr}, canceled[0])

	// The successor never held ADMIN, so the defensive revoke emits nothing.
	assert.Empty(t, sink.Named("role_revoked"))

	require.NoError(t, tr.Initiate(ctx, adminAddr, outsiderAddr))
}

func TestAcceptIsTerminal(t *testing.T) {
	_, tr, _ := newTransition(t)
	ctx := context.Background()

	require.NoError(t, tr.Initiate(ctx, adminAddr, successorAddr))
	require.NoError(t, tr.Accept(ctx, adminAddr, successorAddr))

	assert.ErrorIs(t, tr.Accept(ctx, adminAddr, successorAddr), app_errors.ErrNotPending)
	assert.ErrorIs(t, tr.Cancel(ctx, adminAddr), app_errors.ErrUnauthorized)
}
