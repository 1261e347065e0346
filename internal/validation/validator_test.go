package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrev/rangekv/internal/errors"
)

func TestValidateKey(t *testing.T) {
	v := New(100)

	tests := []struct {
		name string
		key  int
		ok   bool
	}{
		{"lower bound", 0, true},
		{"interior", 50, true},
		{"upper bound", 100, true},
		{"negative", -1, false},
		{"above max", 101, false},
		{"far above max", 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateKey(tt.key)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
		})
	}
}

func TestValidateValue(t *testing.T) {
	v := New(100)

	assert.NoError(t, v.ValidateValue(0))
	assert.NoError(t, v.ValidateValue(999999))

	err := v.ValidateValue(-1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
}

func TestValidateWrite(t *testing.T) {
	v := New(100)

	assert.NoError(t, v.ValidateWrite(1, 223))

	// Key is checked first.
	err := v.ValidateWrite(101, -1)
	require.Error(t, err)
	kv, ok := err.(*errors.KVError)
	require.True(t, ok)
	assert.Equal(t, 101, kv.Details["key"])

	err = v.ValidateWrite(5, -1)
	require.Error(t, err)
	kv, ok = err.(*errors.KVError)
	require.True(t, ok)
	assert.Equal(t, -1, kv.Details["value"])
}
