package node

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devrev/rangekv/internal/errors"
	"github.com/devrev/rangekv/internal/model"
	"github.com/devrev/rangekv/internal/observer"
	"github.com/devrev/rangekv/internal/quorum"
)

// ProcessCommand runs the replicate-then-commit protocol for one command.
// Only the range's leader may execute it; reads are served from the local
// store since every write to the range commits through this node.
//
// Writes to the same range are serialized here: one write finishes its
// replicate, commit, and replica applies before the next begins. Writes to
// different ranges proceed concurrently.
func (n *Node) ProcessCommand(ctx context.Context, cmd model.Command, desc model.RangeDescriptor) (int, error) {
	if desc.LeaderID != n.id {
		err := errors.NotLeader(int(n.id), int(desc.RangeID))
		n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
		return 0, err
	}

	if cmd.Op == model.OperationTypeRead {
		v, err := n.localRead(ctx, cmd.Key)
		if err != nil {
			n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
		}
		return v, err
	}

	rs, ok := n.leading[desc.RangeID]
	if !ok {
		err := errors.Internal("leader has no state for led range", nil)
		n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
		return 0, err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.nextSeq++
	prop := model.Proposal{RangeID: desc.RangeID, Seq: rs.nextSeq, Command: cmd}

	// Stage the proposal on the leader's own pending log first.
	if err := n.Append(ctx, prop); err != nil {
		n.observe(observer.EventFailed, cmd, desc.RangeID, prop.Seq, err)
		return 0, err
	}
	n.observe(observer.EventProposed, cmd, desc.RangeID, prop.Seq, nil)

	need := quorum.Required(n.level, len(desc.ReplicaIDs))
	acked := n.replicateAppend(ctx, desc, prop, need)
	if 1+len(acked) < need { // the leader's own append counts
		err := errors.QuorumNotReached(1+len(acked), need)
		n.observe(observer.EventFailed, cmd, desc.RangeID, prop.Seq, err)
		return 0, err
	}

	// Commit on the leader. On failure the operation aborts here; replicas
	// keep their pending entries un-reconciled, which is how an
	// unconfirmed proposal stays distinguishable from a committed one.
	res, err := n.submit(ctx, request{kind: reqApply, proposal: prop}, "apply")
	if err == nil {
		err = res.err
	}
	if err != nil {
		n.observe(observer.EventFailed, cmd, desc.RangeID, prop.Seq, err)
		return 0, err
	}

	if err := n.replicateApply(ctx, desc, prop, acked); err != nil {
		n.observe(observer.EventFailed, cmd, desc.RangeID, prop.Seq, err)
		return 0, err
	}

	n.observe(observer.EventCommitted, cmd, desc.RangeID, prop.Seq, nil)
	return res.value, nil
}

type appendAck struct {
	replica model.NodeID
	ok      bool
}

// replicateAppend instructs every other replica to stage the proposal and
// returns the IDs that acknowledged. Acks are counted as they arrive: the
// call returns as soon as enough have landed to satisfy need (the leader's
// own append included) or every replica has answered, so an unreachable
// minority cannot stall the write. Stragglers finish in the background;
// their late acks are dropped and their pending entries stay
// un-reconciled. Failures are logged and surfaced as lagging events, never
// propagated; quorum counting decides whether they matter.
func (n *Node) replicateAppend(ctx context.Context, desc model.RangeDescriptor, prop model.Proposal, need int) []model.NodeID {
	others := make([]model.NodeID, 0, len(desc.ReplicaIDs)-1)
	for _, rid := range desc.ReplicaIDs {
		if rid != n.id {
			others = append(others, rid)
		}
	}

	acks := make(chan appendAck, len(others))
	for _, rid := range others {
		go func(rid model.NodeID) {
			peer, ok := n.peers.Node(rid)
			if !ok {
				err := errors.UnknownPeer(int(rid))
				n.logger.Warn("replica missing from peer directory",
					zap.Int("replica_id", int(rid)),
					zap.Int("range_id", int(desc.RangeID)))
				n.observeLagging(rid, prop, err)
				acks <- appendAck{replica: rid}
				return
			}
			if err := peer.Append(ctx, prop); err != nil {
				n.logger.Warn("append failed on replica",
					zap.Int("replica_id", int(rid)),
					zap.Int("range_id", int(desc.RangeID)),
					zap.Uint64("seq", prop.Seq),
					zap.Error(err))
				n.observeLagging(rid, prop, err)
				acks <- appendAck{replica: rid}
				return
			}
			acks <- appendAck{replica: rid, ok: true}
		}(rid)
	}

	acked := make([]model.NodeID, 0, len(others))
	for replied := 0; replied < len(others) && 1+len(acked) < need; replied++ {
		select {
		case a := <-acks:
			if a.ok {
				acked = append(acked, a.replica)
			}
		case <-ctx.Done():
			return acked
		}
	}
	return acked
}

// observeLagging reports a replica that failed to acknowledge an append.
// Unlike the other events, NodeID identifies the lagging replica rather
// than the emitting node.
func (n *Node) observeLagging(rid model.NodeID, prop model.Proposal, err error) {
	n.obs.Observe(observer.Event{
		Type:      observer.EventLagging,
		RequestID: prop.Command.RequestID,
		NodeID:    rid,
		RangeID:   prop.RangeID,
		Op:        prop.Command.Op,
		Key:       prop.Command.Key,
		Seq:       prop.Seq,
		Err:       err,
	})
}

// replicateApply instructs every replica that acknowledged the append to
// commit the proposal. The first failure is propagated upward; replicas
// that already applied are not rolled back.
func (n *Node) replicateApply(ctx context.Context, desc model.RangeDescriptor, prop model.Proposal, acked []model.NodeID) error {
	var g errgroup.Group
	for _, rid := range acked {
		rid := rid
		g.Go(func() error {
			peer, ok := n.peers.Node(rid)
			if !ok {
				return errors.UnknownPeer(int(rid))
			}
			return peer.Apply(ctx, prop)
		})
	}
	return g.Wait()
}
