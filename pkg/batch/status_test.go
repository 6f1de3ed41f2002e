package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransitionAllowedPath(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusStarting, StatusStarted))
	assert.NoError(t, ValidateTransition(StatusStarted, StatusCompleted))
	assert.NoError(t, ValidateTransition(StatusStarted, StatusFailed))
	assert.NoError(t, ValidateTransition(StatusStarted, StatusAborted))
}

func TestValidateTransitionRejectsSkippingStarted(t *testing.T) {
	assert.Error(t, ValidateTransition(StatusStarting, StatusCompleted))
}

func TestValidateTransitionRejectsLeavingTerminalState(t *testing.T) {
	assert.Error(t, ValidateTransition(StatusCompleted, StatusStarted))
	assert.Error(t, ValidateTransition(StatusFailed, StatusAborted))
}
