package config

// VaultConfig represents the vault engine configuration.
type VaultConfig struct {
	// Variant selects the destination allow-list design: explicit bounded
	// lists or Merkle root commitments.
	Variant       string `mapstructure:"variant" validate:"required,oneof=list merkle"`
	Prefix        string `mapstructure:"prefix" validate:"required"`
	ParamOwner    string `mapstructure:"param_owner" validate:"required,eth_addr"`
	InitialAdmin  string `mapstructure:"initial_admin" validate:"required,eth_addr"`
	AssetCapacity int    `mapstructure:"asset_capacity" validate:"omitempty,gte=1"`
	ListCapacity  int    `mapstructure:"list_capacity" validate:"omitempty,gte=1"`
}
