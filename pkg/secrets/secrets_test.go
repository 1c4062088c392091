package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("super-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret", hash)

	assert.NoError(t, Verify("super-secret", hash))
	assert.Error(t, Verify("wrong", hash))
}

func TestHashRejectsEmptySecret(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}
