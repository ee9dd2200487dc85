package errorx

import "errors"

// Sentinel errors for the supply lifecycle.
var (
	ErrOperationExists     = errors.New("operation already in progress")
	ErrOperationNotFound   = errors.New("operation not found")
	ErrSupplyNotFound      = errors.New("hanging supply not found")
	ErrAlreadyDelivered    = errors.New("supply already marked as fictitious delivered")
	ErrNoEligibleOrders    = errors.New("no eligible orders to ship")
	ErrEmptyOrderSet       = errors.New("marketplace reports no orders for supply")
	ErrAccountTokenMissing = errors.New("no token configured for account")
)

// Category classifies a failure. Remote failures degrade to per-item
// outcomes and rule blocks are first-class results; only integrity
// violations abort the whole operation.
type Category int

const (
	CategoryRemoteUnavailable Category = iota + 1
	CategoryRuleBlock
	CategoryDataIntegrity
	CategoryInputValidation
)

// BusinessError carries a category and a user-facing message.
type BusinessError struct {
	Category Category
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewIntegrity creates a data-integrity-violation error. These are the only
// failures the orchestrator lets abort a whole operation.
func NewIntegrity(message string, err error) *BusinessError {
	return &BusinessError{Category: CategoryDataIntegrity, Message: message, Err: err}
}

// NewValidation creates an input-validation error.
func NewValidation(message string) *BusinessError {
	return &BusinessError{Category: CategoryInputValidation, Message: message}
}

// NewRemote creates a remote-unavailable error.
func NewRemote(message string, err error) *BusinessError {
	return &BusinessError{Category: CategoryRemoteUnavailable, Message: message, Err: err}
}

// IsIntegrity reports whether err is a data-integrity violation.
func IsIntegrity(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Category == CategoryDataIntegrity
}

// IsValidation reports whether err is an input-validation failure.
func IsValidation(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Category == CategoryInputValidation
}
