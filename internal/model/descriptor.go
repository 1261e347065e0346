package model

import "fmt"

// NodeID identifies a node in the cluster. IDs are dense integers assigned
// at bootstrap, so the node set can be addressed as a slice.
type NodeID int

// RangeID identifies a range of the keyspace.
type RangeID int

// RangeDescriptor identifies a contiguous portion of the keyspace and its
// replica assignment. Descriptors are created once at bootstrap and never
// mutated afterward; split and merge are out of scope.
type RangeDescriptor struct {
	RangeID       RangeID
	StartKey      int
	EndKey        int // inclusive
	LeaderID      NodeID
	LeaseholderID NodeID
	ReplicaIDs    []NodeID
}

// Contains reports whether key falls inside the descriptor's interval.
func (d RangeDescriptor) Contains(key int) bool {
	return key >= d.StartKey && key <= d.EndKey
}

// HasReplica reports whether the node holds a replica of this range.
func (d RangeDescriptor) HasReplica(id NodeID) bool {
	for _, rid := range d.ReplicaIDs {
		if rid == id {
			return true
		}
	}
	return false
}

// Validate checks the descriptor's internal invariants: a non-empty
// interval, unique replicas, and leader/leaseholder membership in the
// replica set.
func (d RangeDescriptor) Validate() error {
	if d.StartKey > d.EndKey {
		return fmt.Errorf("range %d: start key %d greater than end key %d", d.RangeID, d.StartKey, d.EndKey)
	}
	if len(d.ReplicaIDs) == 0 {
		return fmt.Errorf("range %d: empty replica set", d.RangeID)
	}
	seen := make(map[NodeID]bool, len(d.ReplicaIDs))
	for _, rid := range d.ReplicaIDs {
		if seen[rid] {
			return fmt.Errorf("range %d: duplicate replica %d", d.RangeID, rid)
		}
		seen[rid] = true
	}
	if !seen[d.LeaderID] {
		return fmt.Errorf("range %d: leader %d is not a replica", d.RangeID, d.LeaderID)
	}
	if !seen[d.LeaseholderID] {
		return fmt.Errorf("range %d: leaseholder %d is not a replica", d.RangeID, d.LeaseholderID)
	}
	return nil
}
