// Package cluster bootstraps the node set and exposes the in-process
// client API. It is the only component that constructs range table
// contents; nodes receive the finished table and peer directory and never
// change them.
package cluster

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devrev/rangekv/internal/config"
	"github.com/devrev/rangekv/internal/model"
	"github.com/devrev/rangekv/internal/node"
	"github.com/devrev/rangekv/internal/observer"
	"github.com/devrev/rangekv/internal/quorum"
	"github.com/devrev/rangekv/internal/rangetable"
	"github.com/devrev/rangekv/internal/validation"
)

// Cluster holds all nodes and routes client operations into them through a
// randomly chosen entry node, the way a real client gateway would.
type Cluster struct {
	cfg       config.ClusterConfig
	table     *rangetable.Table
	nodes     []*node.Node
	validator *validation.Validator
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// directory adapts the node slice to the peer lookup interface. Node IDs
// are dense, so the slice itself is the index.
type directory struct {
	nodes []*node.Node
}

func (d directory) Node(id model.NodeID) (*node.Node, bool) {
	if int(id) < 0 || int(id) >= len(d.nodes) {
		return nil, false
	}
	return d.nodes[int(id)], true
}

// New bootstraps a cluster: partitions the keyspace, builds one range
// table, constructs all nodes with identical copies of it, and wires the
// peer directory once every node exists. Construction fails if the
// count/factor constraints are violated.
func New(cfg config.ClusterConfig, logger *zap.Logger, obs observer.Observer) (*Cluster, error) {
	if cfg.NodeCount < 3 {
		return nil, fmt.Errorf("cluster: node count must be at least 3, got %d", cfg.NodeCount)
	}
	if cfg.ReplicationFactor < 3 || cfg.ReplicationFactor > cfg.NodeCount {
		return nil, fmt.Errorf("cluster: replication factor must be in [3, %d], got %d",
			cfg.NodeCount, cfg.ReplicationFactor)
	}
	if obs == nil {
		obs = observer.Nop{}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}

	level, err := quorum.Parse(cfg.WriteConsistency)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	descriptors, err := buildDescriptors(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	table, err := rangetable.New(descriptors, cfg.MaxKey)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	for _, d := range table.Descriptors() {
		logger.Debug("range assigned",
			zap.Int("range_id", int(d.RangeID)),
			zap.Int("start_key", d.StartKey),
			zap.Int("end_key", d.EndKey),
			zap.Int("leader_id", int(d.LeaderID)),
			zap.Int("leaseholder_id", int(d.LeaseholderID)),
			zap.Ints("replica_ids", nodeIDsToInts(d.ReplicaIDs)))
	}

	nodes := make([]*node.Node, cfg.NodeCount)
	for i := range nodes {
		nodes[i] = node.New(model.NodeID(i), table, level, logger, obs)
	}
	dir := directory{nodes: nodes}
	for _, nd := range nodes {
		nd.SetPeers(dir)
		nd.Start()
	}

	logger.Info("cluster bootstrapped",
		zap.Int("node_count", cfg.NodeCount),
		zap.Int("replication_factor", cfg.ReplicationFactor),
		zap.Int("ranges", table.Len()),
		zap.Int("max_key", cfg.MaxKey),
		zap.String("write_consistency", string(level)))

	return &Cluster{
		cfg:       cfg,
		table:     table,
		nodes:     nodes,
		validator: validation.New(cfg.MaxKey),
		logger:    logger,
		rng:       rng,
	}, nil
}

// Insert creates a new key-value pair.
func (c *Cluster) Insert(ctx context.Context, key, value int) error {
	if err := c.validator.ValidateWrite(key, value); err != nil {
		return err
	}
	_, err := c.send(ctx, model.NewCommand(model.OperationTypeCreate, key, value))
	return err
}

// Get reads the value stored under key.
func (c *Cluster) Get(ctx context.Context, key int) (int, error) {
	if err := c.validator.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.send(ctx, model.NewCommand(model.OperationTypeRead, key, 0))
}

// Update overwrites the value of an existing key.
func (c *Cluster) Update(ctx context.Context, key, value int) error {
	if err := c.validator.ValidateWrite(key, value); err != nil {
		return err
	}
	_, err := c.send(ctx, model.NewCommand(model.OperationTypeUpdate, key, value))
	return err
}

// Remove deletes an existing key.
func (c *Cluster) Remove(ctx context.Context, key int) error {
	if err := c.validator.ValidateKey(key); err != nil {
		return err
	}
	_, err := c.send(ctx, model.NewCommand(model.OperationTypeDelete, key, 0))
	return err
}

func (c *Cluster) send(ctx context.Context, cmd model.Command) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	return c.entryNode().SendCommand(ctx, cmd)
}

// entryNode picks a random node to receive the command, simulating a
// client that knows the node set but not the range assignment.
func (c *Cluster) entryNode() *node.Node {
	c.rngMu.Lock()
	i := c.rng.Intn(len(c.nodes))
	c.rngMu.Unlock()
	return c.nodes[i]
}

// Table returns the cluster's range table.
func (c *Cluster) Table() *rangetable.Table {
	return c.table
}

// Nodes returns the node set. Exposed for tests that need a specific entry
// point.
func (c *Cluster) Nodes() []*node.Node {
	return c.nodes
}

// Snapshot collects a per-node view of store contents and pending logs.
func (c *Cluster) Snapshot(ctx context.Context) ([]node.Snapshot, error) {
	out := make([]node.Snapshot, 0, len(c.nodes))
	for _, nd := range c.nodes {
		snap, err := nd.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Close stops all nodes.
func (c *Cluster) Close() {
	for _, nd := range c.nodes {
		nd.Stop()
	}
}

func nodeIDsToInts(ids []model.NodeID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
