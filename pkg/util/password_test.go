package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("veneer-sample-7")
	require.NoError(t, err)

	assert.True(t, CheckPassword("veneer-sample-7", hash))
	assert.False(t, CheckPassword("wrong-password", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, passwordHashCost, cost)
}
