package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
	"github.com/labstack/echo/v4"

	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Amounts travel as decimal strings: JSON numbers cannot carry uint256.

type transferRequest struct {
	Caller      string     `json:"caller" validate:"required,eth_addr"`
	Asset       string     `json:"asset" validate:"required,eth_addr"`
	Destination string     `json:"destination" validate:"required,eth_addr"`
	Amount      string     `json:"amount" validate:"required"`
	Operation   string     `json:"operation"`
	Timestamp   *time.Time `json:"timestamp"`

	TrustedProof     []string `json:"trusted_proof" validate:"omitempty,dive,eth_hash"`
	DestinationProof []string `json:"destination_proof" validate:"omitempty,dive,eth_hash"`
}

type transferResponse struct {
	Route string `json:"route"`
	Day   uint64 `json:"day,omitempty"`
}

type capacityResponse struct {
	Amount        string `json:"amount,omitempty"`
	AmountBounded bool   `json:"amount_bounded"`
	Count         uint64 `json:"count"`
	CountBounded  bool   `json:"count_bounded"`
}

type usageResponse struct {
	Destination string `json:"destination"`
	Day         uint64 `json:"day"`
	Amount      string `json:"amount"`
	Count       uint64 `json:"count"`
}

type roleRequest struct {
	Caller  string `json:"caller" validate:"required,eth_addr"`
	Role    string `json:"role" validate:"required"`
	Account string `json:"account" validate:"required,eth_addr"`
}

type roleMembersResponse struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

type roleCheckResponse struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	HasRole bool   `json:"has_role"`
}

type adminInitiateRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Target string `json:"target" validate:"required,eth_addr"`
}

type adminAcceptRequest struct {
	OriginalAdmin string `json:"original_admin" validate:"required,eth_addr"`
	Caller        string `json:"caller" validate:"required,eth_addr"`
}

type adminCancelRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
}

type pendingTransferResponse struct {
	Admin   string `json:"admin"`
	Pending bool   `json:"pending"`
	Target  string `json:"target,omitempty"`
}

type assetRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Asset  string `json:"asset" validate:"required,eth_addr"`
}

type assetsReplaceRequest struct {
	Caller string   `json:"caller" validate:"required,eth_addr"`
	Assets []string `json:"assets" validate:"required,dive,eth_addr"`
}

type addressesResponse struct {
	Addresses []string `json:"addresses"`
}

type listEntryRequest struct {
	Caller  string `json:"caller" validate:"required,eth_addr"`
	Address string `json:"address" validate:"required,eth_addr"`
}

type listReplaceRequest struct {
	Caller    string   `json:"caller" validate:"required,eth_addr"`
	Addresses []string `json:"addresses" validate:"required,dive,eth_addr"`
}

type listResponse struct {
	Kind      string   `json:"kind"`
	Addresses []string `json:"addresses"`
}

type rootResponse struct {
	Kind string `json:"kind"`
	Root string `json:"root"`
}

type rootUpdateRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Root   string `json:"root" validate:"required,eth_hash"`
}

type membershipRequest struct {
	Address string   `json:"address" validate:"required,eth_addr"`
	Proof   []string `json:"proof" validate:"omitempty,dive,eth_hash"`
}

type membershipResponse struct {
	Address string `json:"address"`
	Member  bool   `json:"member"`
}

type prefixRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Prefix string `json:"prefix" validate:"required"`
}

type paramOwnerRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Owner  string `json:"owner" validate:"required,eth_addr"`
}

type configResponse struct {
	Variant    string `json:"variant"`
	Prefix     string `json:"prefix"`
	ParamOwner string `json:"param_owner"`
	Version    string `json:"version,omitempty"`
	Commit     string `json:"commit,omitempty"`
}

type settingRequest struct {
	Caller string `json:"caller" validate:"required,eth_addr"`
	Owner  string `json:"owner" validate:"required,eth_addr"`
	Key    string `json:"key" validate:"required"`
	Value  string `json:"value" validate:"required"`
}

type settingResponse struct {
	Owner  string `json:"owner"`
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Exists bool   `json:"exists"`
}

type settingsListResponse struct {
	Owner  string            `json:"owner"`
	Values map[string]string `json:"values"`
}

type eventRecordResponse struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type eventsResponse struct {
	Events []eventRecordResponse `json:"events"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func parseAmount(raw string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "amount must be a decimal string")
	}
	return amount, nil
}

func parseProof(items []string) merkle.Proof {
	if len(items) == 0 {
		return nil
	}
	proof := make(merkle.Proof, len(items))
	for i, item := range items {
		proof[i] = common.HexToHash(item)
	}
	return proof
}

// addressParam reads a path or query parameter as an address. Unlike bound
// request bodies, these are not covered by the struct validator.
func addressParam(raw, name string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("invalid %s address %q", name, raw))
	}
	return common.HexToAddress(raw), nil
}

// hashParam reads a query parameter as a 32-byte hash.
func hashParam(raw, name string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("invalid %s hash %q", name, raw))
	}
	return common.BytesToHash(b), nil
}

// atParam reads the optional "at" query parameter, defaulting to now.
func atParam(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("at")
	if raw == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			"at must be an RFC 3339 timestamp")
	}
	return at, nil
}

func hexAddresses(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}

func toAddresses(items []string) []common.Address {
	out := make([]common.Address, len(items))
	for i, item := range items {
		out[i] = common.HexToAddress(item)
	}
	return out
}
