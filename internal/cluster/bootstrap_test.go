package cluster

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrev/rangekv/internal/config"
)

func bootstrapConfig(nodes, rf, maxKey int) config.ClusterConfig {
	return config.ClusterConfig{
		NodeCount:         nodes,
		ReplicationFactor: rf,
		MaxKey:            maxKey,
		Seed:              1,
	}
}

func TestBuildDescriptors_PartitionCoverage(t *testing.T) {
	tests := []struct {
		nodes, rf, maxKey int
	}{
		{3, 3, 100},
		{5, 3, 100},
		{5, 5, 1000},
		{7, 4, 97},
		{10, 3, 100000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n%d_rf%d_max%d", tt.nodes, tt.rf, tt.maxKey), func(t *testing.T) {
			cfg := bootstrapConfig(tt.nodes, tt.rf, tt.maxKey)
			descs, err := buildDescriptors(cfg, rand.New(rand.NewSource(cfg.Seed)))
			require.NoError(t, err)
			require.Len(t, descs, 2*tt.nodes)

			// Contiguous, disjoint, and covering exactly [0, maxKey].
			assert.Equal(t, 0, descs[0].StartKey)
			for i := 1; i < len(descs); i++ {
				assert.Equal(t, descs[i-1].EndKey+1, descs[i].StartKey)
			}
			assert.Equal(t, tt.maxKey, descs[len(descs)-1].EndKey)

			for _, d := range descs {
				require.NoError(t, d.Validate())
				assert.Len(t, d.ReplicaIDs, tt.rf)
				for _, rid := range d.ReplicaIDs {
					assert.GreaterOrEqual(t, int(rid), 0)
					assert.Less(t, int(rid), tt.nodes)
				}
			}
		})
	}
}

func TestBuildDescriptors_LeaseholderPolicy(t *testing.T) {
	cfg := bootstrapConfig(5, 3, 100)
	descs, err := buildDescriptors(cfg, rand.New(rand.NewSource(cfg.Seed)))
	require.NoError(t, err)
	for _, d := range descs {
		assert.NotEqual(t, d.LeaderID, d.LeaseholderID,
			"default policy separates leaseholder from leader")
	}

	cfg.ColocateLeases = true
	descs, err = buildDescriptors(cfg, rand.New(rand.NewSource(cfg.Seed)))
	require.NoError(t, err)
	for _, d := range descs {
		assert.Equal(t, d.LeaderID, d.LeaseholderID)
		assert.Len(t, d.ReplicaIDs, cfg.ReplicationFactor)
	}
}

func TestBuildDescriptors_DeterministicForSeed(t *testing.T) {
	cfg := bootstrapConfig(5, 3, 100)

	a, err := buildDescriptors(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := buildDescriptors(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := buildDescriptors(cfg, rand.New(rand.NewSource(43)))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different seeds should give different placements")
}

func TestBuildDescriptors_MaxKeyTooSmall(t *testing.T) {
	cfg := bootstrapConfig(5, 3, 5) // 10 ranges cannot fit in [0, 5]
	_, err := buildDescriptors(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
