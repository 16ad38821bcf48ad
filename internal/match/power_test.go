package match

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// playPhaseMatch builds a joined match parked at the play barrier, with
// fixture hands of three power cards per seat and the creator set to go
// first.
func playPhaseMatch(t *testing.T) (*Match, *mockEmitter) {
	m, me := setupTestMatch(t)
	m.FirstPlayerID = m.Creator.ID

	for i, p := range []*models.Participant{m.Creator, m.Joiner} {
		p.Step = models.StepWaitingToPlay
		for j := 0; j < 3; j++ {
			p.Hand = append(p.Hand, powerCard(fmt.Sprintf("pw-%d-%d", i, j), models.ColorRed))
		}
		p.SyncCounts()
	}
	return m, me
}

func TestSubmitMiniGameChoiceWhiteSendsSubmitterFirst(t *testing.T) {
	m, me := setupTestMatch(t)
	holder := m.InitiativeHolderID
	other := m.Creator.ID
	if holder == m.Creator.ID {
		other = m.Joiner.ID
	}

	err := m.SubmitMiniGameChoice(other, models.ColorWhite)
	assert.ErrorIs(t, err, ErrNotInitiativeHolder)
	assert.False(t, m.MiniGameResolved())

	require.NoError(t, m.SubmitMiniGameChoice(holder, models.ColorWhite))
	assert.True(t, m.MiniGameResolved())
	assert.Equal(t, holder, m.FirstPlayerID)

	first, err := m.AmIGoingFirst(holder)
	require.NoError(t, err)
	assert.True(t, first)

	// Repeated submission after resolution is a no-op.
	require.NoError(t, m.SubmitMiniGameChoice(holder, models.ColorRed))
	assert.Equal(t, holder, m.FirstPlayerID)
	assert.Equal(t, 1, me.countOfType(EventMiniGameResult))
}

func TestSubmitMiniGameChoiceNonWhiteSendsPeerFirst(t *testing.T) {
	m, _ := setupTestMatch(t)
	holder := m.InitiativeHolderID
	other := m.Creator.ID
	if holder == m.Creator.ID {
		other = m.Joiner.ID
	}

	require.NoError(t, m.SubmitMiniGameChoice(holder, models.ColorRed))
	assert.Equal(t, other, m.FirstPlayerID)
}

func TestCustomInitiativeRule(t *testing.T) {
	m, _ := setupTestMatch(t)
	m.InitiativeRule = func(choice models.Color) bool { return choice == models.ColorBlack }
	holder := m.InitiativeHolderID

	require.NoError(t, m.SubmitMiniGameChoice(holder, models.ColorBlack))
	assert.Equal(t, holder, m.FirstPlayerID)
}

func TestBeginPowerPhaseBarrier(t *testing.T) {
	m, me := playPhaseMatch(t)

	// Holding one seat back keeps the barrier closed.
	m.Joiner.Step = models.StepDrawCards
	m.BeginPowerPhase()
	assert.Equal(t, models.StepWaitingToPlay, m.Creator.Step)

	m.Joiner.Step = models.StepWaitingToPlay
	m.BeginPowerPhase()
	assert.Equal(t, models.StepInPlay, m.Creator.Step)
	assert.Equal(t, models.StepWaitingToPlay, m.Joiner.Step)
	assert.Equal(t, 1, me.countOfType(EventPowerPhaseBegan))

	// Redundant calls do not re-open the phase.
	m.BeginPowerPhase()
	assert.Equal(t, 1, me.countOfType(EventPowerPhaseBegan))
}

func TestPlayPowerCardFlipsTurnWhileFieldHasRoom(t *testing.T) {
	m, _ := playPhaseMatch(t)
	m.BeginPowerPhase()

	err := m.PlayPowerCard(m.Joiner.ID, "pw-1-0", nil)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-0", nil))
	assert.Len(t, m.Field, 1)
	assert.Equal(t, models.StepPassed, m.Creator.Step)
	assert.Equal(t, models.StepInPlay, m.Joiner.Step, "turn flips while field has room")
	assert.Len(t, m.Creator.Hand, 2)
	assert.Equal(t, 2, m.Creator.Board.HandCount)

	require.NoError(t, m.PlayPowerCard(m.Joiner.ID, "pw-1-0", nil))
	assert.Len(t, m.Field, 2)
	assert.Equal(t, models.StepInPlay, m.Creator.Step)
}

func TestFieldLimitStopsTurnHandoff(t *testing.T) {
	m, _ := playPhaseMatch(t)
	m.BeginPowerPhase()

	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-0", nil))
	require.NoError(t, m.PlayPowerCard(m.Joiner.ID, "pw-1-0", nil))
	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-1", nil))

	assert.Len(t, m.Field, FieldLimit)
	assert.True(t, m.IsFieldLimitReached())
	assert.Equal(t, models.StepPassed, m.Joiner.Step,
		"the play that fills the field must not hand the turn back")

	// Even a seat forced into play cannot exceed the cap.
	m.Joiner.Step = models.StepInPlay
	err := m.PlayPowerCard(m.Joiner.ID, "pw-1-1", nil)
	assert.Error(t, err)
	assert.Len(t, m.Field, FieldLimit)
	assert.Len(t, m.Joiner.Hand, 2, "rejected play leaves the hand untouched")
}

func TestPlayPowerCardValidation(t *testing.T) {
	m, _ := playPhaseMatch(t)
	m.Creator.Hand = append(m.Creator.Hand, battleCard("bt-1", models.ColorBlue, 2, 2, 1))
	m.BeginPowerPhase()

	err := m.PlayPowerCard(m.Creator.ID, "missing-card", nil)
	assert.ErrorIs(t, err, ErrCardNotFound)

	err = m.PlayPowerCard(m.Creator.ID, "bt-1", nil)
	assert.ErrorIs(t, err, ErrWrongCardKind)

	assert.Empty(t, m.Field)
	assert.Equal(t, models.StepInPlay, m.Creator.Step)
}

func TestPassAndAllPassed(t *testing.T) {
	m, me := playPhaseMatch(t)
	m.BeginPowerPhase()

	require.NoError(t, m.Pass(m.Creator.ID))
	assert.False(t, m.AllPassed())

	passed, err := m.IsOpponentPassed(m.Joiner.ID)
	require.NoError(t, err)
	assert.True(t, passed)

	// The joiner never flipped to in-play (creator passed without
	// playing), so it claims the turn through the directive path.
	d, err := m.NextPlayDirective(m.Joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, DirectiveYourTurn, d)

	require.NoError(t, m.Pass(m.Joiner.ID))
	assert.True(t, m.AllPassed())
	assert.Equal(t, 2, me.countOfType(EventPassed))
}

func TestNextPlayDirectivePriorities(t *testing.T) {
	m, _ := playPhaseMatch(t)

	// The directive call itself evaluates the phase barrier.
	d, err := m.NextPlayDirective(m.Creator.ID)
	require.NoError(t, err)
	assert.Equal(t, DirectiveYourTurn, d)

	d, err = m.NextPlayDirective(m.Joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, DirectiveWait, d)

	// Both passed with an empty field: advance to the battle phase.
	require.NoError(t, m.Pass(m.Creator.ID))
	m.Joiner.Step = models.StepInPlay
	require.NoError(t, m.Pass(m.Joiner.ID))
	for _, id := range []uuid.UUID{m.Creator.ID, m.Joiner.ID} {
		d, err = m.NextPlayDirective(id)
		require.NoError(t, err)
		assert.Equal(t, DirectiveNextPhase, d)
	}
}

func TestNextPlayDirectiveResolveTriggers(t *testing.T) {
	m, _ := playPhaseMatch(t)
	m.BeginPowerPhase()

	// Full field wins over everything else.
	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-0", nil))
	require.NoError(t, m.PlayPowerCard(m.Joiner.ID, "pw-1-0", nil))
	require.NoError(t, m.PlayPowerCard(m.Creator.ID, "pw-0-1", nil))

	for _, id := range []uuid.UUID{m.Creator.ID, m.Joiner.ID} {
		d, err := m.NextPlayDirective(id)
		require.NoError(t, err)
		assert.Equal(t, DirectiveResolveTriggers, d)
	}

	// Both passed with pending actions on a non-full field.
	m2, _ := playPhaseMatch(t)
	m2.BeginPowerPhase()
	require.NoError(t, m2.PlayPowerCard(m2.Creator.ID, "pw-0-0", nil))
	require.NoError(t, m2.Pass(m2.Joiner.ID))

	d, err := m2.NextPlayDirective(m2.Creator.ID)
	require.NoError(t, err)
	assert.Equal(t, DirectiveResolveTriggers, d)
}

func TestHasPowerCardInHand(t *testing.T) {
	m, _ := playPhaseMatch(t)

	has, err := m.HasPowerCardInHand(m.Creator.ID)
	require.NoError(t, err)
	assert.True(t, has)

	m.Creator.Hand = []*models.CardInstance{battleCard("bt-1", models.ColorRed, 1, 1, 1)}
	has, err = m.HasPowerCardInHand(m.Creator.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
