package model

import (
	"fmt"

	"github.com/google/uuid"
)

// OperationType defines the type of operation carried by a command.
type OperationType string

const (
	OperationTypeCreate OperationType = "create"
	OperationTypeRead   OperationType = "read"
	OperationTypeUpdate OperationType = "update"
	OperationTypeDelete OperationType = "delete"
)

// IsWrite reports whether the operation mutates the store and therefore
// must go through the replicate-then-commit protocol.
func (o OperationType) IsWrite() bool {
	switch o {
	case OperationTypeCreate, OperationTypeUpdate, OperationTypeDelete:
		return true
	default:
		return false
	}
}

// Command is a single low-level change to be applied to the key-value store.
// Value is only meaningful for create and update operations.
type Command struct {
	RequestID uuid.UUID
	Op        OperationType
	Key       int
	Value     int
}

// NewCommand creates a command with a fresh request ID for tracing.
func NewCommand(op OperationType, key, value int) Command {
	return Command{
		RequestID: uuid.New(),
		Op:        op,
		Key:       key,
		Value:     value,
	}
}

func (c Command) String() string {
	return fmt.Sprintf("%s(key=%d, value=%d)", c.Op, c.Key, c.Value)
}

// Proposal is a command staged for application on a replica. Seq is assigned
// by the range leader at proposal time and is unique per range; pending log
// matching is done on (RangeID, Seq), never on command contents.
type Proposal struct {
	RangeID RangeID
	Seq     uint64
	Command Command
}
