package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("s3cret", 42, "patron", 1)
	require.NoError(t, err)

	claims, err := Parse(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "patron", claims["role"])
}

func TestParseWrongSecret(t *testing.T) {
	tok, err := Issue("s3cret", 42, "patron", 1)
	require.NoError(t, err)

	_, err = Parse(tok, "other")
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	tok, err := Issue("s3cret", 42, "patron", -1)
	require.NoError(t, err)

	_, err = Parse(tok, "s3cret")
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("not-a-token", "s3cret")
	assert.Error(t, err)
}
