package match

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersongin/cardbattle-service/internal/catalog"
	"github.com/emersongin/cardbattle-service/internal/models"
)

// mockEmitter collects events instead of sending them over WS.
type mockEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (me *mockEmitter) emitFn(ev Event) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.events = append(me.events, ev)
}

func (me *mockEmitter) lastOfType(t EventType) *Event {
	me.mu.Lock()
	defer me.mu.Unlock()
	for i := len(me.events) - 1; i >= 0; i-- {
		if me.events[i].Type == t {
			return &me.events[i]
		}
	}
	return nil
}

func (me *mockEmitter) countOfType(t EventType) int {
	me.mu.Lock()
	defer me.mu.Unlock()
	n := 0
	for _, ev := range me.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// setupTestMatch creates a joined two-seat match with a seeded rng and a
// mock emitter.
func setupTestMatch(t *testing.T) (*Match, *mockEmitter) {
	rng := rand.New(rand.NewSource(42))
	m := New(catalog.New(rng), rng)
	me := &mockEmitter{}
	m.EmitFn = me.emitFn

	_, err := m.Join()
	require.NoError(t, err)
	return m, me
}

// battleCard builds a battle card for hand fixtures.
func battleCard(id string, color models.Color, attack, health, cost int) *models.CardInstance {
	return &models.CardInstance{
		InstanceID: id,
		TemplateID: id,
		Name:       id,
		Color:      color,
		Kind:       models.KindBattle,
		Attack:     attack,
		Health:     health,
		Cost:       cost,
	}
}

// powerCard builds a power card for hand fixtures.
func powerCard(id string, color models.Color) *models.CardInstance {
	return &models.CardInstance{
		InstanceID: id,
		TemplateID: id,
		Name:       id,
		Color:      color,
		Kind:       models.KindPower,
		EffectKind: "draw",
	}
}

func TestJoinAssignsSecondSeatAndInitiative(t *testing.T) {
	m, me := setupTestMatch(t)

	require.NotNil(t, m.Joiner)
	assert.NotEqual(t, m.Creator.ID, m.Joiner.ID)
	assert.Contains(t, []uuid.UUID{m.Creator.ID, m.Joiner.ID}, m.InitiativeHolderID,
		"initiative holder must be one of the two seats")
	require.NotNil(t, me.lastOfType(EventOpponentJoined))

	_, err := m.Join()
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestIsOpponentJoinedIsRoleRelative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := New(catalog.New(rng), rng)

	joined, err := m.IsOpponentJoined(m.Creator.ID)
	require.NoError(t, err)
	assert.False(t, joined, "no opponent before join")

	_, err = m.Join()
	require.NoError(t, err)

	for _, id := range []uuid.UUID{m.Creator.ID, m.Joiner.ID} {
		joined, err := m.IsOpponentJoined(id)
		require.NoError(t, err)
		assert.True(t, joined)
	}
}

func TestUnknownCallerIsHardError(t *testing.T) {
	m, _ := setupTestMatch(t)

	_, err := m.IsOpponentJoined(uuid.New())
	assert.ErrorIs(t, err, ErrUnknownParticipant)

	err = m.ChooseFolder(uuid.New(), "folder-1")
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestChooseFolderBuildsIndependentDeck(t *testing.T) {
	m, me := setupTestMatch(t)

	require.NoError(t, m.ChooseFolder(m.Creator.ID, "folder-1"))
	require.NoError(t, m.ChooseFolder(m.Joiner.ID, "folder-1"))

	assert.Len(t, m.Creator.Deck, catalog.DeckSize)
	assert.Equal(t, catalog.DeckSize, m.Creator.Board.DeckCount)
	assert.Equal(t, models.StepDeckSet, m.Creator.Step)

	// Same folder, but the two decks never share instance ids.
	seen := map[string]bool{}
	for _, c := range m.Creator.Deck {
		seen[c.InstanceID] = true
	}
	for _, c := range m.Joiner.Deck {
		assert.False(t, seen[c.InstanceID], "instance id %s shared across decks", c.InstanceID)
	}

	assert.Equal(t, 2, me.countOfType(EventDeckSet))

	err := m.ChooseFolder(m.Creator.ID, "no-such-folder")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestChooseFolderAutoAssignsPeerDeckOnlyWhenEnabled(t *testing.T) {
	m, _ := setupTestMatch(t)

	require.NoError(t, m.ChooseFolder(m.Creator.ID, "folder-1"))
	assert.Empty(t, m.Joiner.Deck, "two-human deployment never auto-assigns the peer's deck")

	m2, _ := setupTestMatch(t)
	m2.AutoAssignPeerDeck = true
	m2.FallbackFolderID = "folder-2"
	require.NoError(t, m2.ChooseFolder(m2.Creator.ID, "folder-1"))
	assert.Len(t, m2.Joiner.Deck, catalog.DeckSize)
	assert.Equal(t, models.StepDeckSet, m2.Joiner.Step)
}

func TestIsOpponentDeckSet(t *testing.T) {
	m, _ := setupTestMatch(t)

	set, err := m.IsOpponentDeckSet(m.Joiner.ID)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, m.ChooseFolder(m.Creator.ID, "folder-1"))

	set, err = m.IsOpponentDeckSet(m.Joiner.ID)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = m.IsOpponentDeckSet(m.Creator.ID)
	require.NoError(t, err)
	assert.False(t, set, "creator's opponent has not chosen yet")
}

func TestSnapshotIsRoleRelativeMirror(t *testing.T) {
	m, _ := setupTestMatch(t)
	require.NoError(t, m.ChooseFolder(m.Creator.ID, "folder-1"))
	require.NoError(t, m.ChooseFolder(m.Joiner.ID, "folder-2"))
	require.NoError(t, m.ReadyToDraw(m.Creator.ID))
	require.NoError(t, m.ReadyToDraw(m.Joiner.ID))

	creatorView, err := m.Snapshot(m.Creator.ID)
	require.NoError(t, err)
	joinerView, err := m.Snapshot(m.Joiner.ID)
	require.NoError(t, err)

	// Each side sees itself as "you" and the other as "opponent".
	assert.Equal(t, creatorView.You.ID, joinerView.Opponent.ID)
	assert.Equal(t, joinerView.You.ID, creatorView.Opponent.ID)
	assert.Equal(t, creatorView.You.Board.HandCount, joinerView.Opponent.Board.HandCount)

	// Hands are private: only the viewer's own hand is populated.
	assert.NotEmpty(t, creatorView.You.Hand)
	assert.Empty(t, creatorView.Opponent.Hand)

	// Exactly one side holds the mini-game turn.
	assert.NotEqual(t, creatorView.MyMiniGameTurn, joinerView.MyMiniGameTurn)
}
