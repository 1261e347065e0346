// Package quorum calculates replication acknowledgment requirements.
package quorum

import "fmt"

// Level is a write acknowledgment policy.
type Level string

const (
	// LevelOne acknowledges after a single replica (the leader itself).
	LevelOne Level = "one"
	// LevelQuorum requires a strict majority of the replica set. This is
	// the default: the cluster stays live with a minority of unreachable
	// replicas.
	LevelQuorum Level = "quorum"
	// LevelAll requires every replica to acknowledge.
	LevelAll Level = "all"
)

// Parse normalizes a consistency level string, defaulting to quorum.
func Parse(s string) (Level, error) {
	switch Level(s) {
	case LevelOne, LevelQuorum, LevelAll:
		return Level(s), nil
	case "":
		return LevelQuorum, nil
	default:
		return "", fmt.Errorf("unknown consistency level %q", s)
	}
}

// Majority returns the strict majority of totalReplicas.
func Majority(totalReplicas int) int {
	return totalReplicas/2 + 1
}

// Required returns the number of replica acknowledgments the level demands
// out of totalReplicas.
func Required(level Level, totalReplicas int) int {
	switch level {
	case LevelOne:
		return 1
	case LevelAll:
		return totalReplicas
	default:
		return Majority(totalReplicas)
	}
}

// Reached checks if acked acknowledgments satisfy the level.
func Reached(level Level, acked, totalReplicas int) bool {
	return acked >= Required(level, totalReplicas)
}
