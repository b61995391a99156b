package ledgererr

import (
	"context"
	"errors"
	"fmt"

	reasoncodes "satch-client/pkg/reason_codes"
)

var (
	// ErrDecode marks bytes that do not match the declared record layout.
	ErrDecode = errors.New("decode error")
	// ErrEncode marks request arguments that cannot be laid out.
	ErrEncode = errors.New("encode error")

	ErrEntityNotFound      = errors.New("entity not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrConflict            = errors.New("stale sequence index")
	ErrSigner              = errors.New("signer error")
	ErrUserRejected        = errors.New("user rejected signing")
	ErrSignerUnavailable   = errors.New("signer unavailable")
	ErrGateway             = errors.New("gateway error")
	ErrRemoteRejected      = errors.New("remote program rejected request")
	ErrDerivationExhausted = errors.New("address derivation exhausted")
	ErrInvalidSeeds        = errors.New("invalid seeds")

	// ErrUnknownOutcome is returned when a submission may or may not have landed.
	// Only a re-fetch of the target address resolves it.
	ErrUnknownOutcome = errors.New("unknown submission outcome")
)

// DecodeError describes why a stored record could not be decoded.
type DecodeError struct {
	Record string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %s", e.Record, e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// NewDecodeError builds a DecodeError for the given record kind.
func NewDecodeError(record string, offset int, format string, v ...interface{}) error {
	return &DecodeError{Record: record, Offset: offset, Reason: fmt.Sprintf(format, v...)}
}

// RemoteError carries a rejection from the ledger program as reported by the gateway.
// Kind is one of the sentinel errors (ErrConflict, ErrDuplicateKey, ErrRemoteRejected).
type RemoteError struct {
	Kind    error
	Code    int64
	Message string
	Logs    []string
}

func (e *RemoteError) Error() string {
	if e.Code >= 0 {
		return fmt.Sprintf("%s: program error %d: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Kind }

// RetryClass tells a caller what to do with an error without the core deciding the UX.
type RetryClass string

const (
	Retry      RetryClass = "retry"
	InputError RetryClass = "input_error"
	Fatal      RetryClass = "fatal"
	Unknown    RetryClass = "unknown"
)

// Classify maps an error to its reason code and retry class.
func Classify(err error) (reasoncodes.ReasonCode, RetryClass) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, ErrUnknownOutcome),
		errors.Is(err, context.DeadlineExceeded):
		return reasoncodes.ErrUnknownOutcome, Unknown
	case errors.Is(err, ErrConflict):
		return reasoncodes.ErrConflict, Retry
	case errors.Is(err, ErrDuplicateKey):
		return reasoncodes.ErrDuplicateKey, InputError
	case errors.Is(err, ErrEntityNotFound):
		return reasoncodes.ErrEntityNotFound, InputError
	case errors.Is(err, ErrEncode), errors.Is(err, ErrInvalidSeeds):
		return reasoncodes.ErrEncode, InputError
	case errors.Is(err, ErrUserRejected):
		return reasoncodes.ErrSigner, InputError
	case errors.Is(err, ErrSigner):
		return reasoncodes.ErrSigner, Retry
	case errors.Is(err, ErrRemoteRejected):
		return reasoncodes.ErrRemoteRejected, InputError
	case errors.Is(err, ErrGateway):
		return reasoncodes.ErrSolana, Retry
	case errors.Is(err, ErrDecode):
		return reasoncodes.ErrDecode, Fatal
	case errors.Is(err, ErrDerivationExhausted):
		return reasoncodes.ErrDerivation, Fatal
	default:
		return reasoncodes.ErrInternal, Fatal
	}
}
