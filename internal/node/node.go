// Package node implements a cluster node: routing of incoming commands to
// the owning range's leaseholder and leader, and the replicate-then-commit
// protocol the leader runs across the replica set.
//
// A node's store and pending log are touched only by the node's own mailbox
// goroutine; other nodes reach them exclusively through request messages
// with context deadlines. Mailbox operations are local and never wait on
// another node, so nodes cannot deadlock on each other.
package node

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/devrev/rangekv/internal/errors"
	"github.com/devrev/rangekv/internal/model"
	"github.com/devrev/rangekv/internal/observer"
	"github.com/devrev/rangekv/internal/quorum"
	"github.com/devrev/rangekv/internal/rangetable"
	"github.com/devrev/rangekv/internal/store"
)

const mailboxSize = 64

// Directory resolves node IDs to peer handles. It is wired once at
// bootstrap, after every node exists, and never mutated afterward.
type Directory interface {
	Node(id model.NodeID) (*Node, bool)
}

// Snapshot is a point-in-time view of one node's local state.
type Snapshot struct {
	NodeID  model.NodeID
	Entries []store.Entry
	Pending []model.Proposal
}

type reqKind int

const (
	reqAppend reqKind = iota
	reqApply
	reqRead
	reqSnapshot
)

type request struct {
	kind     reqKind
	proposal model.Proposal
	key      int
	resp     chan result
}

type result struct {
	value int
	err   error
	snap  Snapshot
}

// rangeState carries per-range leader state: the proposal sequence counter
// and the mutex that serializes writes to the range.
type rangeState struct {
	mu      sync.Mutex
	nextSeq uint64
}

// Node owns one store, one pending log, and a read-only copy of the range
// table.
type Node struct {
	id      model.NodeID
	table   *rangetable.Table
	store   *store.Store
	pending *PendingLog
	level   quorum.Level

	peers Directory

	// leading holds state for every range this node leads. Built at
	// construction from the immutable table, so the map itself needs no
	// locking.
	leading map[model.RangeID]*rangeState

	mailbox  chan request
	stopCh   chan struct{}
	stopOnce sync.Once

	logger *zap.Logger
	obs    observer.Observer
}

// New creates a node. Start must be called before the node can serve, and
// SetPeers before any command can be forwarded.
func New(id model.NodeID, table *rangetable.Table, level quorum.Level, logger *zap.Logger, obs observer.Observer) *Node {
	leading := make(map[model.RangeID]*rangeState)
	for _, d := range table.Descriptors() {
		if d.LeaderID == id {
			leading[d.RangeID] = &rangeState{}
		}
	}
	return &Node{
		id:      id,
		table:   table,
		store:   store.New(),
		pending: NewPendingLog(),
		level:   level,
		leading: leading,
		mailbox: make(chan request, mailboxSize),
		stopCh:  make(chan struct{}),
		logger:  logger.With(zap.Int("node_id", int(id))),
		obs:     obs,
	}
}

// ID returns the node's identifier.
func (n *Node) ID() model.NodeID {
	return n.id
}

// SetPeers wires the read-only peer directory.
func (n *Node) SetPeers(d Directory) {
	n.peers = d
}

// Start launches the mailbox goroutine.
func (n *Node) Start() {
	go n.run()
}

// Stop shuts the mailbox down. In-flight requests fail with an internal
// error; callers observing a timeout instead is equally acceptable.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopCh)
	})
}

func (n *Node) run() {
	for {
		select {
		case <-n.stopCh:
			return
		case req := <-n.mailbox:
			req.resp <- n.handle(req)
		}
	}
}

// handle executes a single mailbox request against the node's local state.
// Nothing here may block on another node.
func (n *Node) handle(req request) result {
	switch req.kind {
	case reqAppend:
		return result{err: n.handleAppend(req.proposal)}
	case reqApply:
		return n.handleApply(req.proposal)
	case reqRead:
		v, err := n.store.Read(req.key)
		return result{value: v, err: err}
	case reqSnapshot:
		return result{snap: Snapshot{
			NodeID:  n.id,
			Entries: n.store.Entries(),
			Pending: n.pending.Entries(),
		}}
	default:
		return result{err: errors.Internal("unknown mailbox request", nil)}
	}
}

func (n *Node) handleAppend(p model.Proposal) error {
	desc, ok := n.table.Lookup(p.Command.Key)
	if !ok || desc.RangeID != p.RangeID {
		return errors.NoRangeForKey(p.Command.Key)
	}
	if !desc.HasReplica(n.id) {
		return errors.NotReplica(int(n.id), int(p.RangeID))
	}
	n.pending.Append(p)
	return nil
}

func (n *Node) handleApply(p model.Proposal) result {
	desc, ok := n.table.Lookup(p.Command.Key)
	if !ok || desc.RangeID != p.RangeID {
		return result{err: errors.NoRangeForKey(p.Command.Key)}
	}
	if !desc.HasReplica(n.id) {
		return result{err: errors.NotReplica(int(n.id), int(p.RangeID))}
	}

	// The matching pending entry must exist and is consumed before the
	// store is touched; a miss means the apply was never proposed here.
	if _, ok := n.pending.Take(p.RangeID, p.Seq); !ok {
		return result{err: errors.NoMatchingProposal(int(p.RangeID), p.Seq)}
	}

	cmd := p.Command
	switch cmd.Op {
	case model.OperationTypeCreate:
		return result{err: n.store.Create(cmd.Key, cmd.Value)}
	case model.OperationTypeUpdate:
		return result{err: n.store.Update(cmd.Key, cmd.Value)}
	case model.OperationTypeDelete:
		return result{err: n.store.Delete(cmd.Key)}
	default:
		return result{err: errors.Validation("unknown operation: " + string(cmd.Op))}
	}
}

// submit posts a request into the node's own mailbox and waits for the
// answer or the context deadline. The returned error is a transport-level
// failure (timeout, shutdown); semantic failures ride in result.err.
func (n *Node) submit(ctx context.Context, req request, op string) (result, error) {
	req.resp = make(chan result, 1)
	select {
	case n.mailbox <- req:
	case <-ctx.Done():
		return result{}, errors.Timeout(op, ctx.Err())
	case <-n.stopCh:
		return result{}, errors.Internal("node stopped", nil)
	}
	select {
	case res := <-req.resp:
		return res, nil
	case <-ctx.Done():
		return result{}, errors.Timeout(op, ctx.Err())
	case <-n.stopCh:
		return result{}, errors.Internal("node stopped", nil)
	}
}

// Append stages a proposal on this replica's pending log. Called by range
// leaders during replication.
func (n *Node) Append(ctx context.Context, p model.Proposal) error {
	res, err := n.submit(ctx, request{kind: reqAppend, proposal: p}, "append")
	if err != nil {
		return err
	}
	return res.err
}

// Apply commits a previously appended proposal to this replica's store.
// Called by range leaders after the append quorum is reached.
func (n *Node) Apply(ctx context.Context, p model.Proposal) error {
	res, err := n.submit(ctx, request{kind: reqApply, proposal: p}, "apply")
	if err != nil {
		return err
	}
	return res.err
}

// Snapshot returns a consistent view of the node's store and pending log.
func (n *Node) Snapshot(ctx context.Context) (Snapshot, error) {
	res, err := n.submit(ctx, request{kind: reqSnapshot}, "snapshot")
	if err != nil {
		return Snapshot{}, err
	}
	return res.snap, nil
}

func (n *Node) localRead(ctx context.Context, key int) (int, error) {
	res, err := n.submit(ctx, request{kind: reqRead, key: key}, "read")
	if err != nil {
		return 0, err
	}
	return res.value, res.err
}
