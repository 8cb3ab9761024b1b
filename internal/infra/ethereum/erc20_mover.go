// Package ethereum moves ERC-20 tokens on chain. It is the production
// TokenMover; local runs use the mock mover instead.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/internal/infra/config"
)

const (
	defaultGasLimit     = 90_000
	confirmPollInterval = 2 * time.Second
)

// transferSelector is the 4-byte selector of transfer(address,uint256).
var transferSelector = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

// ERC20Mover submits ERC-20 transfer transactions and waits for them to be
// mined. Transfers are serialized so the account nonce stays consistent.
type ERC20Mover struct {
	client        *ethclient.Client
	key           *ecdsa.PrivateKey
	sender        common.Address
	chainID       *big.Int
	gasLimit      uint64
	confirmations uint64
	logger        *slog.Logger

	mu sync.Mutex
}

// NewERC20Mover dials the RPC endpoint and derives the sending account from
// the configured private key.
func NewERC20Mover(ctx context.Context, cfg config.ERC20Config, logger *slog.Logger) (*ERC20Mover, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("erc20 mover requires an rpc url")
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse mover private key: %w", err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID <= 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to query chain id: %w", err)
		}
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return &ERC20Mover{
		client:        client,
		key:           key,
		sender:        crypto.PubkeyToAddress(key.PublicKey),
		chainID:       chainID,
		gasLimit:      gasLimit,
		confirmations: cfg.Confirmations,
		logger:        logger,
	}, nil
}

// Sender returns the address transactions are sent from.
func (m *ERC20Mover) Sender() common.Address {
	return m.sender
}

// Close releases the RPC connection.
func (m *ERC20Mover) Close() {
	m.client.Close()
}

// Transfer calls transfer(destination, amount) on the asset contract and
// blocks until the transaction is mined and confirmed. A reverted transaction
// is reported as an error.
func (m *ERC20Mover) Transfer(ctx context.Context, asset, destination common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce, err := m.client.PendingNonceAt(ctx, m.sender)
	if err != nil {
		return fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := m.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &asset,
		Value:    big.NewInt(0),
		Gas:      m.gasLimit,
		GasPrice: gasPrice,
		Data:     packTransfer(destination, amount),
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(m.chainID), m.key)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := m.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	m.logger.InfoContext(ctx, "erc20 transfer submitted",
		"tx_hash", signed.Hash().Hex(),
		"asset", asset.Hex(),
		"destination", destination.Hex(),
		"amount", amount.Dec(),
	)

	receipt, err := bind.WaitMined(ctx, m.client, signed)
	if err != nil {
		return fmt.Errorf("failed waiting for transaction %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}

	if err := m.awaitConfirmations(ctx, receipt.BlockNumber); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "erc20 transfer mined",
		"tx_hash", signed.Hash().Hex(),
		"block", receipt.BlockNumber.Uint64(),
	)
	return nil
}

// awaitConfirmations waits until the chain head is at least confirmations-1
// blocks past the inclusion block. WaitMined already guarantees one.
func (m *ERC20Mover) awaitConfirmations(ctx context.Context, minedAt *big.Int) error {
	if m.confirmations <= 1 {
		return nil
	}
	target := minedAt.Uint64() + m.confirmations - 1

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		head, err := m.client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to query head block: %w", err)
		}
		if head >= target {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func packTransfer(to common.Address, amount *uint256.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	value := amount.Bytes32()
	data = append(data, value[:]...)
	return data
}
