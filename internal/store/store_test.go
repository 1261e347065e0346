package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrev/rangekv/internal/errors"
)

func TestCreateAndRead(t *testing.T) {
	s := New()

	require.NoError(t, s.Create(1, 223))
	v, err := s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, 223, v)
}

func TestCreate_ExistingKeyLeavesStoreUnchanged(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(1, 223))

	err := s.Create(1, 999)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyExists, errors.GetCode(err))

	v, err := s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, 223, v, "failed create must not overwrite")
	assert.Equal(t, 1, s.Len())
}

func TestRead_MissingKey(t *testing.T) {
	s := New()
	_, err := s.Read(42)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyNotFound, errors.GetCode(err))
}

func TestUpdate(t *testing.T) {
	s := New()

	err := s.Update(1, 10)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyNotFound, errors.GetCode(err))
	assert.Equal(t, 0, s.Len(), "failed update must not insert")

	require.NoError(t, s.Create(1, 10))
	require.NoError(t, s.Update(1, 20))
	v, err := s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestDelete(t *testing.T) {
	s := New()

	err := s.Delete(1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyNotFound, errors.GetCode(err))

	require.NoError(t, s.Create(1, 10))
	require.NoError(t, s.Delete(1))
	assert.False(t, s.Has(1))

	err = s.Delete(1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyNotFound, errors.GetCode(err))
}

func TestEntries_KeyOrder(t *testing.T) {
	s := New()
	for _, k := range []int{50, 3, 99, 17} {
		require.NoError(t, s.Create(k, k*2))
	}

	entries := s.Entries()
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].Key, entries[i-1].Key)
	}
}
