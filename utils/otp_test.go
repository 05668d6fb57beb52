package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOTPAttemptsDisabledWithoutRedis(t *testing.T) {
	err := ValidateOTPAttempts(context.Background(), "9876543210", nil)
	assert.NoError(t, err)
}
