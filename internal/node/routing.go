package node

import (
	"context"

	"github.com/devrev/rangekv/internal/errors"
	"github.com/devrev/rangekv/internal/model"
	"github.com/devrev/rangekv/internal/observer"
)

// maxForwardHops bounds entry node -> leaseholder -> leader forwarding.
// With identical range tables one hop to the leaseholder always suffices;
// the guard protects against a corrupted or divergent table.
const maxForwardHops = 3

// SendCommand accepts a client command on any node and routes it to the
// owning range's leaseholder: reads are answered there, writes continue to
// the range leader.
func (n *Node) SendCommand(ctx context.Context, cmd model.Command) (int, error) {
	n.observe(observer.EventReceived, cmd, model.RangeID(-1), 0, nil)
	return n.route(ctx, cmd, 0)
}

func (n *Node) route(ctx context.Context, cmd model.Command, hops int) (int, error) {
	if hops > maxForwardHops {
		err := errors.ForwardingLoop(cmd.Key, maxForwardHops)
		n.observe(observer.EventFailed, cmd, model.RangeID(-1), 0, err)
		return 0, err
	}

	desc, ok := n.table.Lookup(cmd.Key)
	if !ok {
		err := errors.NoRangeForKey(cmd.Key)
		n.observe(observer.EventFailed, cmd, model.RangeID(-1), 0, err)
		return 0, err
	}

	if desc.LeaseholderID != n.id {
		peer, ok := n.peers.Node(desc.LeaseholderID)
		if !ok {
			err := errors.UnknownPeer(int(desc.LeaseholderID))
			n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
			return 0, err
		}
		n.observe(observer.EventForwarded, cmd, desc.RangeID, 0, nil)
		return peer.route(ctx, cmd, hops+1)
	}

	// This node holds the lease: it serves reads from its own store and
	// hands writes to the range leader.
	if cmd.Op == model.OperationTypeRead {
		v, err := n.localRead(ctx, cmd.Key)
		if err != nil {
			n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
		}
		return v, err
	}

	if desc.LeaderID == n.id {
		return n.ProcessCommand(ctx, cmd, desc)
	}

	leader, ok := n.peers.Node(desc.LeaderID)
	if !ok {
		err := errors.UnknownPeer(int(desc.LeaderID))
		n.observe(observer.EventFailed, cmd, desc.RangeID, 0, err)
		return 0, err
	}
	n.observe(observer.EventForwarded, cmd, desc.RangeID, 0, nil)
	return leader.ProcessCommand(ctx, cmd, desc)
}

func (n *Node) observe(t observer.EventType, cmd model.Command, rangeID model.RangeID, seq uint64, err error) {
	n.obs.Observe(observer.Event{
		Type:      t,
		RequestID: cmd.RequestID,
		NodeID:    n.id,
		RangeID:   rangeID,
		Op:        cmd.Op,
		Key:       cmd.Key,
		Seq:       seq,
		Err:       err,
	})
}
