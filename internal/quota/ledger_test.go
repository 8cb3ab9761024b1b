package quota_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
	"github.com/taisys-technologies/voc-vault/internal/quota"
)

var (
	dest      = common.HexToAddress("0x11")
	otherDest = common.HexToAddress("0x22")
)

func limit(v uint64) domain.Limit {
	return domain.Limit{Value: uint256.NewInt(v), Configured: true}
}

func TestRecordAccumulates(t *testing.T) {
	l := quota.NewLedger()

	require.NoError(t, l.Record(dest, uint256.NewInt(100), 7))
	require.NoError(t, l.Record(dest, uint256.NewInt(250), 7))

	u := l.UsageAt(dest, 7)
	assert.Equal(t, uint256.NewInt(350), u.Amount)
	assert.Equal(t, uint64(2), u.Count)
}

func TestBucketsAreIndependent(t *testing.T) {
	l := quota.NewLedger()

	require.NoError(t, l.Record(dest, uint256.NewInt(100), 7))

	// A new day or another destination starts from zero.
	next := l.UsageAt(dest, 8)
	assert.True(t, next.Amount.IsZero())
	assert.Zero(t, next.Count)

	other := l.UsageAt(otherDest, 7)
	assert.True(t, other.Amount.IsZero())
	assert.Zero(t, other.Count)
}

func TestUsageAtReturnsCopy(t *testing.T) {
	l := quota.NewLedger()
	require.NoError(t, l.Record(dest, uint256.NewInt(100), 7))

	u := l.UsageAt(dest, 7)
	u.Amount.SetUint64(9999)

	assert.Equal(t, uint256.NewInt(100), l.UsageAt(dest, 7).Amount)
}

func TestUnrecordReverses(t *testing.T) {
	l := quota.NewLedger()

	require.NoError(t, l.Record(dest, uint256.NewInt(100), 7))
	require.NoError(t, l.Record(dest, uint256.NewInt(50), 7))
	l.Unrecord(dest, uint256.NewInt(50), 7)

	u := l.UsageAt(dest, 7)
	assert.Equal(t, uint256.NewInt(100), u.Amount)
	assert.Equal(t, uint64(1), u.Count)
}

func TestUnrecordClampsAtZero(t *testing.T) {
	l := quota.NewLedger()

	require.NoError(t, l.Record(dest, uint256.NewInt(100), 7))
	l.Unrecord(dest, uint256.NewInt(500), 7)

	u := l.UsageAt(dest, 7)
	assert.True(t, u.Amount.IsZero())
	assert.Zero(t, u.Count)
}

func TestUnrecordAbsentBucketIsNoop(t *testing.T) {
	l := quota.NewLedger()
	l.Unrecord(dest, uint256.NewInt(1), 7)

	u := l.UsageAt(dest, 7)
	assert.True(t, u.Amount.IsZero())
}

func TestRecordOverflowIsRejected(t *testing.T) {
	l := quota.NewLedger()

	huge := new(uint256.Int).SetAllOne()
	require.NoError(t, l.Record(dest, huge, 7))
	err := l.Record(dest, uint256.NewInt(1), 7)
	require.Error(t, err)

	// The failed record leaves the bucket unchanged.
	u := l.UsageAt(dest, 7)
	assert.Equal(t, huge, u.Amount)
	assert.Equal(t, uint64(1), u.Count)
}

func TestEvaluateUnconfiguredIsUnlimited(t *testing.T) {
	var policy domain.QuotaPolicy
	usage := quota.Usage{Amount: new(uint256.Int).SetAllOne(), Count: 1 << 40}

	assert.NoError(t, quota.Evaluate(policy, usage, new(uint256.Int).SetAllOne()))
}

func TestEvaluatePerTransferCeiling(t *testing.T) {
	policy := domain.QuotaPolicy{MaxAmountPerTransfer: limit(100)}
	usage := quota.Usage{Amount: new(uint256.Int)}

	assert.NoError(t, quota.Evaluate(policy, usage, uint256.NewInt(100)))
	assert.ErrorIs(t, quota.Evaluate(policy, usage, uint256.NewInt(101)), app_errors.ErrOverPerCountLimit)
}

func TestEvaluateDailyAmountCeiling(t *testing.T) {
	policy := domain.QuotaPolicy{MaxAmountPerDay: limit(500)}
	usage := quota.Usage{Amount: uint256.NewInt(400), Count: 1}

	assert.ErrorIs(t, quota.Evaluate(policy, usage, uint256.NewInt(150)), app_errors.ErrOverPerDayAmountLimit)
	assert.NoError(t, quota.Evaluate(policy, usage, uint256.NewInt(100)))
}

func TestEvaluateDailyAmountOverflowCountsAsOver(t *testing.T) {
	policy := domain.QuotaPolicy{MaxAmountPerDay: domain.Limit{Value: new(uint256.Int).SetAllOne(), Configured: true}}
	usage := quota.Usage{Amount: new(uint256.Int).SetAllOne(), Count: 1}

	assert.ErrorIs(t, quota.Evaluate(policy, usage, uint256.NewInt(1)), app_errors.ErrOverPerDayAmountLimit)
}

func TestEvaluateDailyCountCeiling(t *testing.T) {
	policy := domain.QuotaPolicy{MaxCountPerDay: limit(2)}

	assert.NoError(t, quota.Evaluate(policy, quota.Usage{Amount: new(uint256.Int), Count: 1}, uint256.NewInt(1)))
	assert.ErrorIs(t,
		quota.Evaluate(policy, quota.Usage{Amount: new(uint256.Int), Count: 2}, uint256.NewInt(1)),
		app_errors.ErrOverPerDayCountLimit)
}

func TestEvaluateChecksPerTransferFirst(t *testing.T) {
	policy := domain.QuotaPolicy{
		MaxAmountPerTransfer: limit(10),
		MaxAmountPerDay:      limit(10),
	}
	usage := quota.Usage{Amount: uint256.NewInt(5)}

	assert.ErrorIs(t, quota.Evaluate(policy, usage, uint256.NewInt(20)), app_errors.ErrOverPerCountLimit)
}

func TestAvailableHeadroom(t *testing.T) {
	policy := domain.QuotaPolicy{
		MaxAmountPerDay: limit(500),
		MaxCountPerDay:  limit(10),
	}
	usage := quota.Usage{Amount: uint256.NewInt(400), Count: 3}

	c := quota.Available(policy, usage)
	require.True(t, c.AmountBounded)
	assert.Equal(t, uint256.NewInt(100), c.Amount)
	require.True(t, c.CountBounded)
	assert.Equal(t, uint64(7), c.Count)
}

func TestAvailableClampsExhaustedDimensions(t *testing.T) {
	policy := domain.QuotaPolicy{
		MaxAmountPerDay: limit(100),
		MaxCountPerDay:  limit(2),
	}
	usage := quota.Usage{Amount: uint256.NewInt(300), Count: 5}

	c := quota.Available(policy, usage)
	assert.True(t, c.Amount.IsZero())
	assert.Zero(t, c.Count)
}

func TestAvailableUnconfiguredIsUnbounded(t *testing.T) {
	c := quota.Available(domain.QuotaPolicy{}, quota.Usage{Amount: uint256.NewInt(5), Count: 1})

	assert.False(t, c.AmountBounded)
	assert.False(t, c.CountBounded)
	assert.Nil(t, c.Amount)
}
