package settings

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

// PolicyReader assembles a QuotaPolicy from the four per-asset ceiling keys.
// Missing keys become unconfigured limits, never zero values.
type PolicyReader struct {
	store domain.SettingReader
}

func NewPolicyReader(store domain.SettingReader) *PolicyReader {
	return &PolicyReader{store: store}
}

// Policy fetches the ceilings for asset under the given owner and prefix.
func (p *PolicyReader) Policy(ctx context.Context, owner common.Address, prefix string, asset common.Address) (domain.QuotaPolicy, error) {
	var policy domain.QuotaPolicy

	fetch := func(suffix string, dst *domain.Limit) error {
		key := Key(prefix, asset, suffix)
		value, exists, err := p.store.CheckUint(ctx, owner, key)
		if err != nil {
			return fmt.Errorf("settings: fetch %s: %w", key, err)
		}
		dst.Value = value
		dst.Configured = exists
		return nil
	}

	if err := fetch(SuffixMaxAmountPerCount, &policy.MaxAmountPerTransfer); err != nil {
		return domain.QuotaPolicy{}, err
	}
	if err := fetch(SuffixMaxAmountPerDay, &policy.MaxAmountPerDay); err != nil {
		return domain.QuotaPolicy{}, err
	}
	if err := fetch(SuffixMaxCountPerDay, &policy.MaxCountPerDay); err != nil {
		return domain.QuotaPolicy{}, err
	}
	if err := fetch(SuffixLargeAmount, &policy.LargeAmount); err != nil {
		return domain.QuotaPolicy{}, err
	}

	return policy, nil
}
