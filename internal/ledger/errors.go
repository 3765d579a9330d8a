package ledger

import "errors"

var (
	ErrNotFound          = errors.New("ledger: not found")
	ErrUnknownKind       = errors.New("ledger: unknown collection")
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	ErrInvalidQuantity   = errors.New("ledger: invalid quantity")
	ErrInvalidSnapshot   = errors.New("ledger: invalid snapshot")

	// ErrPersistence wraps every failure coming from the underlying store.
	ErrPersistence = errors.New("ledger: persistence failure")
)

// IsPersistence reports whether err came from the storage layer rather than from a
// ledger rule.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
