package cluster

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/devrev/rangekv/internal/config"
	"github.com/devrev/rangekv/internal/model"
)

// buildDescriptors partitions [0, MaxKey] into 2*NodeCount contiguous
// ranges of equal size (the last range absorbs any remainder) and assigns
// each a leader, leaseholder and replica set. Deterministic given the
// seeded rng.
func buildDescriptors(cfg config.ClusterConfig, rng *rand.Rand) ([]model.RangeDescriptor, error) {
	totalRanges := 2 * cfg.NodeCount
	rangeSize := cfg.MaxKey / totalRanges
	if rangeSize == 0 {
		return nil, fmt.Errorf("max_key %d too small to split into %d ranges", cfg.MaxKey, totalRanges)
	}

	descriptors := make([]model.RangeDescriptor, 0, totalRanges)
	for i := 0; i < totalRanges; i++ {
		start := i * rangeSize
		end := (i+1)*rangeSize - 1
		if i == totalRanges-1 {
			end = cfg.MaxKey
		}

		leader := model.NodeID(rng.Intn(cfg.NodeCount))
		leaseholder := leader
		if !cfg.ColocateLeases {
			leaseholder = model.NodeID((int(leader) + 1) % cfg.NodeCount)
		}

		replicas := []model.NodeID{leader}
		if leaseholder != leader {
			replicas = append(replicas, leaseholder)
		}
		// Remaining replicas round-robin from the leaseholder's successor.
		next := model.NodeID((int(leaseholder) + 1) % cfg.NodeCount)
		for len(replicas) < cfg.ReplicationFactor {
			if !containsNode(replicas, next) {
				replicas = append(replicas, next)
			}
			next = model.NodeID((int(next) + 1) % cfg.NodeCount)
		}
		sort.Slice(replicas, func(a, b int) bool { return replicas[a] < replicas[b] })

		descriptors = append(descriptors, model.RangeDescriptor{
			RangeID:       model.RangeID(i),
			StartKey:      start,
			EndKey:        end,
			LeaderID:      leader,
			LeaseholderID: leaseholder,
			ReplicaIDs:    replicas,
		})
	}
	return descriptors, nil
}

func containsNode(ids []model.NodeID, id model.NodeID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
