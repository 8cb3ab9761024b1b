package config

// MoverConfig selects and configures the token mover behind the vault.
type MoverConfig struct {
	Type  string      `mapstructure:"type" validate:"required,oneof=mock erc20"`
	ERC20 ERC20Config `mapstructure:"erc20"`
}

// ERC20Config represents the on-chain ERC-20 mover configuration.
type ERC20Config struct {
	RPCURL        string `mapstructure:"rpc_url" validate:"omitempty,url"`
	PrivateKey    string `mapstructure:"private_key"`
	ChainID       int64  `mapstructure:"chain_id" validate:"omitempty,gt=0"`
	Confirmations uint64 `mapstructure:"confirmations"`
	GasLimit      uint64 `mapstructure:"gas_limit"`
}
