package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrev/rangekv/internal/model"
)

func proposal(rangeID model.RangeID, seq uint64, key, value int) model.Proposal {
	return model.Proposal{
		RangeID: rangeID,
		Seq:     seq,
		Command: model.NewCommand(model.OperationTypeCreate, key, value),
	}
}

func TestPendingLog_TakeByIdentity(t *testing.T) {
	l := NewPendingLog()
	// Two structurally identical commands, distinguished only by seq.
	l.Append(proposal(1, 1, 5, 10))
	l.Append(proposal(1, 2, 5, 10))
	require.Equal(t, 2, l.Len())

	p, ok := l.Take(1, 2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), p.Seq)
	assert.Equal(t, 1, l.Len())

	// Taking the same identity twice fails.
	_, ok = l.Take(1, 2)
	assert.False(t, ok)

	p, ok = l.Take(1, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), p.Seq)
	assert.Equal(t, 0, l.Len())
}

func TestPendingLog_TakeWrongRange(t *testing.T) {
	l := NewPendingLog()
	l.Append(proposal(1, 1, 5, 10))

	_, ok := l.Take(2, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestPendingLog_EntriesAppendOrder(t *testing.T) {
	l := NewPendingLog()
	l.Append(proposal(1, 1, 5, 10))
	l.Append(proposal(2, 1, 60, 20))
	l.Append(proposal(1, 2, 7, 30))

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, model.RangeID(2), entries[1].RangeID)
	assert.Equal(t, uint64(2), entries[2].Seq)

	// Entries must be a copy, not a view.
	entries[0].Seq = 99
	fresh := l.Entries()
	assert.Equal(t, uint64(1), fresh[0].Seq)
}
