package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// fieldMatch builds a play-phase match with two pending power actions,
// one played by each seat, and both seats passed.
func fieldMatch(t *testing.T) (*Match, *mockEmitter) {
	m, me := playPhaseMatch(t)
	m.BeginPowerPhase()
	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-0", nil))
	require.NoError(t, m.PlayPowerCard(m.Joiner.ID, "pw-1-0", nil))
	require.NoError(t, m.Pass(m.Creator.ID))
	return m, me
}

func TestNextUnseenActionDrainsPerSeat(t *testing.T) {
	m, _ := fieldMatch(t)

	rec, err := m.NextUnseenAction(m.Creator.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "pw-0-0", rec.PowerCard.InstanceID, "oldest first")

	// Acknowledging advances only the caller's cursor.
	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-0-0"))

	rec, err = m.NextUnseenAction(m.Creator.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "pw-1-0", rec.PowerCard.InstanceID)

	rec, err = m.NextUnseenAction(m.Joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "pw-0-0", rec.PowerCard.InstanceID,
		"the slower seat still sees the record the fast seat acked")
}

func TestPurgeRequiresBothAcks(t *testing.T) {
	m, me := fieldMatch(t)

	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-0-0"))
	assert.Len(t, m.Field, 2, "single ack never removes a record")
	assert.Empty(t, m.Creator.Trash)

	require.NoError(t, m.AcknowledgeAction(m.Joiner.ID, "pw-0-0"))
	assert.Len(t, m.Field, 1)
	assert.Equal(t, 1, me.countOfType(EventActionResolved))

	// Trash credit goes to whoever played the card, not to the acker.
	require.Len(t, m.Creator.Trash, 1)
	assert.Equal(t, "pw-0-0", m.Creator.Trash[0].InstanceID)
	assert.Equal(t, 1, m.Creator.Board.TrashCount)
	assert.Empty(t, m.Joiner.Trash)

	require.NoError(t, m.AcknowledgeAction(m.Joiner.ID, "pw-1-0"))
	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-1-0"))
	assert.Empty(t, m.Field)
	require.Len(t, m.Joiner.Trash, 1)
	assert.Equal(t, "pw-1-0", m.Joiner.Trash[0].InstanceID)
}

func TestAcknowledgeUnknownIDIsNoOp(t *testing.T) {
	m, me := fieldMatch(t)

	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "never-played"))
	assert.Len(t, m.Field, 2)
	assert.Equal(t, 0, me.countOfType(EventActionAcked))

	// Redundant acks of the same record are harmless too.
	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-0-0"))
	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-0-0"))
	assert.Len(t, m.Field, 2)
	assert.Empty(t, m.Creator.Trash)
}

func TestHasUnseenActionsRearmsTheSeat(t *testing.T) {
	m, _ := fieldMatch(t)

	pending, err := m.HasUnseenActions(m.Creator.ID)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, models.StepPassed, m.Creator.Step,
		"pending records keep the seat parked")

	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-0-0"))
	require.NoError(t, m.AcknowledgeAction(m.Creator.ID, "pw-1-0"))

	pending, err = m.HasUnseenActions(m.Creator.ID)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Equal(t, models.StepWaitingToPlay, m.Creator.Step,
		"a drained seat returns to the play barrier")
	assert.False(t, m.Creator.Board.HasPassed)
}

func TestNextUnseenActionReturnsCopy(t *testing.T) {
	m, _ := fieldMatch(t)

	rec, err := m.NextUnseenAction(m.Creator.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec.PlayerAcked = true
	assert.False(t, m.Field[0].PlayerAcked,
		"mutating the returned record must not touch shared state")
}
