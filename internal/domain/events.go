package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Event is a state-change notification emitted by the engine, one per
// observable mutation.
type Event interface {
	EventName() string
}

// Sink receives engine notifications. Implementations must not call back
// into the component that emitted the event.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// ListKind names one of the vault's address lists.
type ListKind string

const (
	ListAssets  ListKind = "assets"
	ListTrusted ListKind = "trusted"
	ListGeneral ListKind = "general"
)

type RoleGranted struct {
	Role    Role
	Account common.Address
	Grantor common.Address
}

func (RoleGranted) EventName() string { return "role_granted" }

type RoleRevoked struct {
	Role    Role
	Account common.Address
	Revoker common.Address
}

func (RoleRevoked) EventName() string { return "role_revoked" }

type AdminTransferInitiated struct {
	From common.Address
	To   common.Address
}

func (AdminTransferInitiated) EventName() string { return "admin_transfer_initiated" }

type AdminTransferAccepted struct {
	From common.Address
	To   common.Address
}

func (AdminTransferAccepted) EventName() string { return "admin_transfer_accepted" }

type AdminTransferCanceled struct {
	From common.Address
	To   common.Address
}

func (AdminTransferCanceled) EventName() string { return "admin_transfer_canceled" }

type AddressListed struct {
	List    ListKind
	Address common.Address
}

func (AddressListed) EventName() string { return "address_listed" }

type AddressUnlisted struct {
	List    ListKind
	Address common.Address
}

func (AddressUnlisted) EventName() string { return "address_unlisted" }

type ListReplaced struct {
	List ListKind
	Size int
}

func (ListReplaced) EventName() string { return "list_replaced" }

type RootChanged struct {
	List ListKind
	Root common.Hash
}

func (RootChanged) EventName() string { return "root_changed" }

type ConfigChanged struct {
	Field    string
	Previous string
	Current  string
}

func (ConfigChanged) EventName() string { return "config_changed" }

type SettingUpdated struct {
	Owner   common.Address
	Key     string
	Value   *uint256.Int
	Removed bool
}

func (SettingUpdated) EventName() string { return "setting_updated" }

type TransferExecuted struct {
	Caller      common.Address
	Asset       common.Address
	Destination common.Address
	Amount      *uint256.Int
	Route       Route
	Operation   string
	// Day is set on the quota route only.
	Day uint64
}

func (TransferExecuted) EventName() string { return "transfer_executed" }
