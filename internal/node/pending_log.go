package node

import "github.com/devrev/rangekv/internal/model"

// PendingLog is the per-node ordered sequence of proposed-but-unapplied
// commands. Entries are appended when a write is proposed and removed when
// the matching apply arrives; an entry that is never applied stays here,
// which is what distinguishes an unconfirmed proposal from a committed one.
//
// Like the store, a pending log is owned by exactly one node's mailbox
// goroutine and is not safe for concurrent use.
type PendingLog struct {
	entries []model.Proposal
}

// NewPendingLog creates an empty pending log.
func NewPendingLog() *PendingLog {
	return &PendingLog{}
}

// Append stages a proposal.
func (l *PendingLog) Append(p model.Proposal) {
	l.entries = append(l.entries, p)
}

// Take removes and returns the proposal matching (rangeID, seq). Matching
// is by identity, never by command contents, so two structurally identical
// commands queued close together cannot be confused.
func (l *PendingLog) Take(rangeID model.RangeID, seq uint64) (model.Proposal, bool) {
	for i, p := range l.entries {
		if p.RangeID == rangeID && p.Seq == seq {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return p, true
		}
	}
	return model.Proposal{}, false
}

// Len returns the number of pending proposals.
func (l *PendingLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the pending proposals in append order.
func (l *PendingLog) Entries() []model.Proposal {
	out := make([]model.Proposal, len(l.entries))
	copy(out, l.entries)
	return out
}
