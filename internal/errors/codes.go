package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents internal error codes for cluster operations
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Client errors (4xx equivalent)
	ErrCodeValidation    ErrorCode = 1000
	ErrCodeKeyNotFound   ErrorCode = 1001
	ErrCodeAlreadyExists ErrorCode = 1002

	// Protocol errors (5xx equivalent)
	ErrCodeInternal      ErrorCode = 2000
	ErrCodeRouting       ErrorCode = 2001
	ErrCodeAuthorization ErrorCode = 2002
	ErrCodeConsistency   ErrorCode = 2003
	ErrCodeTimeout       ErrorCode = 2004
	ErrCodeQuorum        ErrorCode = 2005
)

// KVError represents a structured error with code and context
type KVError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *KVError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *KVError) Unwrap() error {
	return e.Cause
}

// ToGRPCStatus converts KVError to gRPC status
func (e *KVError) ToGRPCStatus() *status.Status {
	return status.New(e.toGRPCCode(), e.Error())
}

// toGRPCCode maps internal error codes to gRPC codes
func (e *KVError) toGRPCCode() codes.Code {
	switch e.Code {
	case ErrCodeOK:
		return codes.OK
	case ErrCodeValidation:
		return codes.InvalidArgument
	case ErrCodeKeyNotFound:
		return codes.NotFound
	case ErrCodeAlreadyExists:
		return codes.AlreadyExists
	case ErrCodeAuthorization:
		return codes.FailedPrecondition
	case ErrCodeConsistency:
		return codes.DataLoss
	case ErrCodeTimeout:
		return codes.DeadlineExceeded
	case ErrCodeQuorum:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// NewKVError creates a new KVError
func NewKVError(code ErrorCode, message string, cause error) *KVError {
	return &KVError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// WithDetail adds a detail to the error
func (e *KVError) WithDetail(key string, value interface{}) *KVError {
	e.Details[key] = value
	return e
}

// Convenience constructors for common errors

func Validation(message string) *KVError {
	return NewKVError(ErrCodeValidation, message, nil)
}

func KeyOutOfDomain(key, maxKey int) *KVError {
	return NewKVError(ErrCodeValidation, fmt.Sprintf("key %d outside domain [0, %d]", key, maxKey), nil).
		WithDetail("key", key).
		WithDetail("max_key", maxKey)
}

func NegativeValue(value int) *KVError {
	return NewKVError(ErrCodeValidation, fmt.Sprintf("value %d must be non-negative", value), nil).
		WithDetail("value", value)
}

func KeyNotFound(key int) *KVError {
	return NewKVError(ErrCodeKeyNotFound, fmt.Sprintf("key not found: %d", key), nil).
		WithDetail("key", key)
}

func AlreadyExists(key int) *KVError {
	return NewKVError(ErrCodeAlreadyExists, fmt.Sprintf("key already exists: %d", key), nil).
		WithDetail("key", key)
}

func NoRangeForKey(key int) *KVError {
	return NewKVError(ErrCodeRouting, fmt.Sprintf("no range covers key %d", key), nil).
		WithDetail("key", key)
}

func ForwardingLoop(key, hops int) *KVError {
	return NewKVError(ErrCodeRouting, fmt.Sprintf("forwarding for key %d exceeded %d hops", key, hops), nil).
		WithDetail("key", key).
		WithDetail("hops", hops)
}

func UnknownPeer(id int) *KVError {
	return NewKVError(ErrCodeRouting, fmt.Sprintf("unknown peer node: %d", id), nil).
		WithDetail("node_id", id)
}

func NotLeader(nodeID, rangeID int) *KVError {
	return NewKVError(ErrCodeAuthorization,
		fmt.Sprintf("node %d is not the leader of range %d", nodeID, rangeID), nil).
		WithDetail("node_id", nodeID).
		WithDetail("range_id", rangeID)
}

func NotReplica(nodeID, rangeID int) *KVError {
	return NewKVError(ErrCodeAuthorization,
		fmt.Sprintf("node %d holds no replica of range %d", nodeID, rangeID), nil).
		WithDetail("node_id", nodeID).
		WithDetail("range_id", rangeID)
}

func NoMatchingProposal(rangeID int, seq uint64) *KVError {
	return NewKVError(ErrCodeConsistency,
		fmt.Sprintf("no pending proposal for range %d seq %d", rangeID, seq), nil).
		WithDetail("range_id", rangeID).
		WithDetail("seq", seq)
}

func Timeout(op string, cause error) *KVError {
	return NewKVError(ErrCodeTimeout, fmt.Sprintf("%s did not complete in time", op), cause).
		WithDetail("op", op)
}

func QuorumNotReached(acked, required int) *KVError {
	return NewKVError(ErrCodeQuorum,
		fmt.Sprintf("replication quorum not reached: %d/%d", acked, required), nil).
		WithDetail("acked", acked).
		WithDetail("required", required)
}

func Internal(message string, cause error) *KVError {
	return NewKVError(ErrCodeInternal, message, cause)
}

// IsKVError checks if an error is a KVError
func IsKVError(err error) bool {
	_, ok := err.(*KVError)
	return ok
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if e, ok := err.(*KVError); ok {
		return e.Code
	}
	return ErrCodeInternal
}
