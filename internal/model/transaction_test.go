package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxStateCancelTarget(t *testing.T) {
	assert.Equal(t, TxStateCancelled, TxStateCancelTarget(TxStateCreated))
	assert.Equal(t, TxStateCancelledAfterPerform, TxStateCancelTarget(TxStatePerformed))

	// Terminal states have no cancel target.
	assert.Equal(t, 0, TxStateCancelTarget(TxStateCancelled))
	assert.Equal(t, 0, TxStateCancelTarget(TxStateCancelledAfterPerform))
	assert.Equal(t, 0, TxStateCancelTarget(0))
}

func TestIsTxStateCancelled(t *testing.T) {
	assert.True(t, IsTxStateCancelled(TxStateCancelled))
	assert.True(t, IsTxStateCancelled(TxStateCancelledAfterPerform))
	assert.False(t, IsTxStateCancelled(TxStateCreated))
	assert.False(t, IsTxStateCancelled(TxStatePerformed))
}
