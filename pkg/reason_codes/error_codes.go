package reasoncodes

type ReasonCode string

const (
	ErrUnmarshal      ReasonCode = "UnmarshalError"
	ErrUnsupportedJob ReasonCode = "UnsupportedJobError"
	ErrSolana         ReasonCode = "SolanaBlockchainError"
	ErrDecode         ReasonCode = "DecodeError"
	ErrEncode         ReasonCode = "EncodeError"
	ErrEntityNotFound ReasonCode = "EntityNotFound"
	ErrDuplicateKey   ReasonCode = "DuplicateKey"
	ErrConflict       ReasonCode = "Conflict"
	ErrSigner         ReasonCode = "SignerError"
	ErrRemoteRejected ReasonCode = "RemoteRejected"
	ErrDerivation     ReasonCode = "DerivationExhausted"
	ErrUnknownOutcome ReasonCode = "UnknownOutcome"
	ErrInternal       ReasonCode = "InternalError"
)
