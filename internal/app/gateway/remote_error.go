package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Program error numbers the client has to tell apart.
const (
	SystemErrAccountAlreadyInUse     = 0
	AnchorErrConstraintSeeds         = 2006
	SatchErrRatingOutOfRange         = 6000
	SatchErrInvalidPlatformAuthority = 6001
)

const alreadyInUseMarker = "already in use"

var (
	customErrorPattern = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)
	anchorErrorPattern = regexp.MustCompile(`Error Number: (\d+)`)
)

// NewRemoteError builds a RemoteError from the error text, the structured error
// value found in simulation results and signature statuses, and the program logs.
// An occupied init target becomes ErrDuplicateKey; anything else is ErrRemoteRejected
// carrying the program error number, which callers map further (see sequence).
func NewRemoteError(message string, errValue interface{}, logs []string) *ledgererr.RemoteError {
	code, found := customCode(errValue)
	if !found {
		code, found = codeFromText(message, logs)
	}
	if !found {
		code = -1
	}

	kind := ledgererr.ErrRemoteRejected
	if code == SystemErrAccountAlreadyInUse || containsInUse(message, logs) {
		kind = ledgererr.ErrDuplicateKey
	}

	if message == "" && errValue != nil {
		message = fmt.Sprintf("%v", errValue)
	}
	return &ledgererr.RemoteError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Logs:    logs,
	}
}

// remoteErrorFromRPC unwraps a JSON-RPC error such as a failed preflight simulation.
func remoteErrorFromRPC(err error) (*ledgererr.RemoteError, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}

	var errValue interface{}
	var logs []string
	if data, ok := rpcErr.Data.(map[string]interface{}); ok {
		errValue = data["err"]
		if raw, ok := data["logs"].([]interface{}); ok {
			for _, l := range raw {
				if s, ok := l.(string); ok {
					logs = append(logs, s)
				}
			}
		}
	}
	return NewRemoteError(rpcErr.Message, errValue, logs), true
}

// customCode reads {"InstructionError": [idx, {"Custom": n}]}.
func customCode(errValue interface{}) (int64, bool) {
	m, ok := errValue.(map[string]interface{})
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"].([]interface{})
	if !ok || len(ie) != 2 {
		return 0, false
	}
	detail, ok := ie[1].(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch n := detail["Custom"].(type) {
	case float64:
		return int64(n), true
	case json.Number:
		v, err := n.Int64()
		return v, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func codeFromText(message string, logs []string) (int64, bool) {
	for _, line := range append([]string{message}, logs...) {
		if m := customErrorPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseInt(m[1], 16, 64); err == nil {
				return v, true
			}
		}
		if m := anchorErrorPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func containsInUse(message string, logs []string) bool {
	if strings.Contains(message, alreadyInUseMarker) {
		return true
	}
	for _, l := range logs {
		if strings.Contains(l, alreadyInUseMarker) {
			return true
		}
	}
	return false
}
