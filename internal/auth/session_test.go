package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantTokenRoundTrip(t *testing.T) {
	Init()

	participantID := uuid.NewString()
	roomID := uuid.NewString()

	token, err := CreateParticipantToken(participantID, roomID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotParticipant, gotRoom, err := AuthenticateToken(token)
	require.NoError(t, err)
	assert.Equal(t, participantID, gotParticipant)
	assert.Equal(t, roomID, gotRoom)
}

func TestAuthenticateTokenRejectsGarbage(t *testing.T) {
	Init()

	_, _, err := AuthenticateToken("not-a-jwt")
	assert.Error(t, err)

	// A token signed under a different key pair must not verify.
	token, err := CreateParticipantToken(uuid.NewString(), uuid.NewString())
	require.NoError(t, err)
	Init()
	_, _, err = AuthenticateToken(token)
	assert.Error(t, err)
}

func TestTokenExpireTimeParsing(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "90m")
	parseTokenExpireTime()
	assert.Equal(t, 5400, TOKEN_EXPIRE_TIME_SEC)

	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	parseTokenExpireTime()
	assert.Equal(t, 0, TOKEN_EXPIRE_TIME_SEC)
}
