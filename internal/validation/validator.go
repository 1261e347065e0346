// Package validation rejects out-of-domain client input before it reaches
// any node.
package validation

import (
	"github.com/devrev/rangekv/internal/errors"
)

// Validator validates client operations against the keyspace domain.
type Validator struct {
	maxKey int
}

// New creates a validator for the keyspace [0, maxKey].
func New(maxKey int) *Validator {
	return &Validator{maxKey: maxKey}
}

// ValidateKey checks that key lies inside the keyspace.
func (v *Validator) ValidateKey(key int) error {
	if key < 0 || key > v.maxKey {
		return errors.KeyOutOfDomain(key, v.maxKey)
	}
	return nil
}

// ValidateValue checks that value is non-negative.
func (v *Validator) ValidateValue(value int) error {
	if value < 0 {
		return errors.NegativeValue(value)
	}
	return nil
}

// ValidateWrite checks both key and value for a write operation.
func (v *Validator) ValidateWrite(key, value int) error {
	if err := v.ValidateKey(key); err != nil {
		return err
	}
	return v.ValidateValue(value)
}
