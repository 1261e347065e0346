package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestConstructors_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  *KVError
		code ErrorCode
	}{
		{"validation", Validation("bad input"), ErrCodeValidation},
		{"key out of domain", KeyOutOfDomain(101, 100), ErrCodeValidation},
		{"negative value", NegativeValue(-5), ErrCodeValidation},
		{"key not found", KeyNotFound(7), ErrCodeKeyNotFound},
		{"already exists", AlreadyExists(7), ErrCodeAlreadyExists},
		{"no range for key", NoRangeForKey(200), ErrCodeRouting},
		{"forwarding loop", ForwardingLoop(5, 3), ErrCodeRouting},
		{"unknown peer", UnknownPeer(9), ErrCodeRouting},
		{"not leader", NotLeader(1, 2), ErrCodeAuthorization},
		{"not replica", NotReplica(1, 2), ErrCodeAuthorization},
		{"no matching proposal", NoMatchingProposal(2, 4), ErrCodeConsistency},
		{"timeout", Timeout("append", nil), ErrCodeTimeout},
		{"quorum not reached", QuorumNotReached(1, 2), ErrCodeQuorum},
		{"internal", Internal("boom", nil), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.True(t, IsKVError(tt.err))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestGetCode_PlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain")))
	assert.False(t, IsKVError(fmt.Errorf("plain")))
}

func TestKVError_CauseAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("context deadline exceeded")
	err := Timeout("apply", cause)

	assert.Contains(t, err.Error(), "apply")
	assert.Contains(t, err.Error(), cause.Error())
	assert.Equal(t, cause, err.Unwrap())
}

func TestKVError_Details(t *testing.T) {
	err := KeyOutOfDomain(150, 100)
	assert.Equal(t, 150, err.Details["key"])
	assert.Equal(t, 100, err.Details["max_key"])

	err = NewKVError(ErrCodeInternal, "x", nil).WithDetail("node_id", 3)
	assert.Equal(t, 3, err.Details["node_id"])
}

func TestToGRPCStatus_Mapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want codes.Code
	}{
		{ErrCodeOK, codes.OK},
		{ErrCodeValidation, codes.InvalidArgument},
		{ErrCodeKeyNotFound, codes.NotFound},
		{ErrCodeAlreadyExists, codes.AlreadyExists},
		{ErrCodeAuthorization, codes.FailedPrecondition},
		{ErrCodeConsistency, codes.DataLoss},
		{ErrCodeTimeout, codes.DeadlineExceeded},
		{ErrCodeQuorum, codes.Unavailable},
		{ErrCodeInternal, codes.Internal},
		{ErrCodeRouting, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("code_%d", tt.code), func(t *testing.T) {
			st := NewKVError(tt.code, "msg", nil).ToGRPCStatus()
			require.NotNil(t, st)
			assert.Equal(t, tt.want, st.Code())
		})
	}
}
