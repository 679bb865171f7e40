package entity

import (
	"errors"
	"fmt"
)

// Validation and navigation errors. These are local failures returned
// immediately to the caller; none of them is retryable.
var (
	ErrInvalidAddress      = errors.New("invalid wallet address")
	ErrDuplicateWallet     = errors.New("wallet already tracked")
	ErrWalletNotTracked    = errors.New("wallet not tracked")
	ErrWalletLimitExceeded = errors.New("tracked wallet limit exceeded")
	ErrIndexOutOfRange     = errors.New("wallet index out of range")
	ErrInvalidTransition   = errors.New("navigation action not valid from current view")
	ErrCoinNotFound        = errors.New("no tracked wallet holds a position in this coin")
	ErrAllWalletsFailed    = errors.New("all wallet fetches failed")
	ErrStaleView           = errors.New("navigation state changed while fetching")
)

// FetchErrorKind distinguishes transient transport failures from
// non-retryable exchange failures.
type FetchErrorKind int

const (
	// KindNetwork covers timeouts, connection failures and cancelled
	// contexts. Retryable.
	KindNetwork FetchErrorKind = iota + 1
	// KindExchange covers unexpected status codes and malformed
	// responses. Not retryable.
	KindExchange
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindExchange:
		return "exchange"
	default:
		return "unknown"
	}
}

// FetchError is a typed failure from the exchange boundary. Wallet is the
// address the query was issued for and Op names the exchange operation.
type FetchError struct {
	Kind   FetchErrorKind
	Op     string
	Wallet string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Wallet != "" {
		return fmt.Sprintf("%s error in %s for wallet %s: %v", e.Kind, e.Op, e.Wallet, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient.
func (e *FetchError) Retryable() bool { return e.Kind == KindNetwork }

// NewNetworkError wraps a transient transport failure.
func NewNetworkError(op, wallet string, err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Op: op, Wallet: wallet, Err: err}
}

// NewExchangeError wraps a non-retryable exchange failure.
func NewExchangeError(op, wallet string, err error) *FetchError {
	return &FetchError{Kind: KindExchange, Op: op, Wallet: wallet, Err: err}
}

// IsNetworkError reports whether err is a transient fetch failure.
func IsNetworkError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindNetwork
}

// IsExchangeError reports whether err is a non-retryable exchange failure.
func IsExchangeError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindExchange
}
