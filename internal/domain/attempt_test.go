package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryStatus_IsTerminal(t *testing.T) {
	assert.False(t, DeliveryStatusPending.IsTerminal())
	assert.False(t, DeliveryStatusFailedAttempt.IsTerminal())
	assert.True(t, DeliveryStatusSuccess.IsTerminal())
	assert.True(t, DeliveryStatusFailure.IsTerminal())
}
