package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	userID := node.Generate()

	issuer := NewIssuer("test-secret")
	now := time.Now().UTC()

	signed, expiresAt, err := issuer.Issue(userID, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(TokenTTL).Unix(), expiresAt.Unix())

	got, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	signed, _, err := NewIssuer("secret-a").Issue(node.Generate(), time.Now().UTC())
	require.NoError(t, err)

	_, err = NewIssuer("secret-b").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	issuer := NewIssuer("test-secret")
	signed, _, err := issuer.Issue(node.Generate(), time.Now().UTC().Add(-2*TokenTTL))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret")

	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
