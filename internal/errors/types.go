package errors

import "errors"

// Sentinel errors for every refused operation. Each one is terminal for the
// current request and leaves vault state untouched.
var (
	ErrZeroAddress  = errors.New("zero address")
	ErrUnauthorized = errors.New("caller lacks required role")
	ErrForbidden    = errors.New("transfer forbidden")

	// Admin handover.
	ErrInvalidTarget  = errors.New("invalid admin transfer target")
	ErrAlreadyPending = errors.New("admin transfer already pending")
	ErrNotPending     = errors.New("no admin transfer pending")
	ErrWrongCaller    = errors.New("caller is not the pending admin")

	// Allow-list mutation.
	ErrDuplicateAddress = errors.New("address already listed")
	ErrCapacityExceeded = errors.New("list capacity exceeded")
	ErrListTooLong      = errors.New("replacement list too long")

	// Transfer authorization.
	ErrUnsupportedAsset      = errors.New("asset not supported")
	ErrInvalidTransfer       = errors.New("transfer exceeds large-amount threshold")
	ErrInvalidDestination    = errors.New("destination not allowed")
	ErrOverPerCountLimit     = errors.New("amount exceeds per-transfer limit")
	ErrOverPerDayAmountLimit = errors.New("amount exceeds daily amount limit")
	ErrOverPerDayCountLimit  = errors.New("transfer count exceeds daily count limit")

	// Execution.
	ErrReentrantCall  = errors.New("transfer already in flight")
	ErrTransferFailed = errors.New("token transfer failed")
)
