package match

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/emersongin/cardbattle-service/internal/catalog"
	"github.com/emersongin/cardbattle-service/internal/models"
)

const (
	// HandSize is how many cards each participant draws.
	HandSize = 6
	// FieldLimit caps the shared field's pending power actions.
	FieldLimit = 3
)

// Error taxonomy. Not-found errors are recoverable at the caller's
// boundary; ErrUnknownParticipant and ErrCardNotFound indicate an
// engine or caller bug and abort the operation.
var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrRoomFull              = errors.New("room already has two participants")
	ErrUnknownParticipant    = errors.New("participant id matches neither seat")
	ErrFolderNotFound        = errors.New("folder not found")
	ErrCardNotFound          = errors.New("card not present in expected zone")
	ErrNotInitiativeHolder   = errors.New("participant does not hold the mini-game initiative")
	ErrNotYourTurn           = errors.New("participant is not in play")
	ErrOpponentNotJoined     = errors.New("no opponent has joined the room")
	ErrWrongCardKind         = errors.New("card kind does not match the operation")
)

// Match holds the entire authoritative state of one room in memory.
// Every exported operation locks Mu; the two participants' call streams
// may interleave arbitrarily, and all cross-seat barriers (draw,
// all-passed, dual-ack purge) are idempotent state checks evaluated
// under the lock.
type Match struct {
	Mu sync.Mutex

	RoomID             uuid.UUID
	Creator            *models.Participant
	Joiner             *models.Participant
	InitiativeHolderID uuid.UUID
	FirstPlayerID      uuid.UUID

	// Field is the shared, ordered queue of pending power actions.
	Field []*models.PowerActionRecord

	// InitiativeRule decides whether the mini-game submitter goes first.
	// Defaults to WhiteGoesFirst.
	InitiativeRule InitiativeRule

	// AutoAssignPeerDeck replicates the demo harness behavior of giving
	// the other seat a fallback deck when a folder is chosen. Never
	// enable it for a two-human deployment.
	AutoAssignPeerDeck bool
	FallbackFolderID   string

	// EmitFn is used to publish events to the transport and the journal.
	// If nil, no events are published.
	EmitFn func(ev Event)

	Catalog *catalog.Catalog
	Rng     *rand.Rand

	eventIndex int
}

// New creates a match with a fresh room id and the creator seat bound.
func New(cat *catalog.Catalog, rng *rand.Rand) *Match {
	roomID, _ := uuid.NewV7()
	return &Match{
		RoomID:         roomID,
		Creator:        newParticipant(),
		InitiativeRule: WhiteGoesFirst,
		Catalog:        cat,
		Rng:            rng,
	}
}

func newParticipant() *models.Participant {
	return &models.Participant{
		ID:    uuid.New(),
		Step:  models.StepInLobby,
		Board: models.NewBoardState(),
	}
}

// Join binds the second seat and randomly assigns the mini-game
// initiative between the two participants.
func (m *Match) Join() (uuid.UUID, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Joiner != nil {
		return uuid.Nil, ErrRoomFull
	}
	m.Joiner = newParticipant()

	if m.Rng.Intn(2) == 0 {
		m.InitiativeHolderID = m.Creator.ID
	} else {
		m.InitiativeHolderID = m.Joiner.ID
	}

	m.emit(Event{Type: EventOpponentJoined, Actor: m.Joiner.ID})
	return m.Joiner.ID, nil
}

// slots resolves the caller into its own seat and the peer seat. The
// creator is the "player" role and the joiner the "opponent" role; every
// role-relative accessor goes through here. A caller matching neither
// seat is a hard error, never a silent no-op.
func (m *Match) slots(callerID uuid.UUID) (self, peer *models.Participant, err error) {
	switch {
	case m.Creator != nil && callerID == m.Creator.ID:
		return m.Creator, m.Joiner, nil
	case m.Joiner != nil && callerID == m.Joiner.ID:
		return m.Joiner, m.Creator, nil
	}
	log.Errorf("match %s: ambiguous caller identity %s", m.RoomID, callerID)
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, callerID)
}

// participantByID resolves a seat by identity, not role. Used where the
// original actor matters regardless of who is asking.
func (m *Match) participantByID(id uuid.UUID) *models.Participant {
	if m.Creator != nil && m.Creator.ID == id {
		return m.Creator
	}
	if m.Joiner != nil && m.Joiner.ID == id {
		return m.Joiner
	}
	return nil
}

// IsOpponentJoined reports whether the caller's peer seat is bound.
func (m *Match) IsOpponentJoined(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	_, peer, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	return peer != nil, nil
}

// ChooseFolder clones the folder's deck template into a fresh deck bound
// to the caller's seat and marks the seat "deck set".
func (m *Match) ChooseFolder(selfID uuid.UUID, folderID string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, peer, err := m.slots(selfID)
	if err != nil {
		return err
	}
	if _, ok := m.Catalog.Folder(folderID); !ok {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, folderID)
	}

	deck, err := m.Catalog.BuildDeck(folderID)
	if err != nil {
		return err
	}
	self.Deck = deck
	self.SyncCounts()
	self.Step = models.StepDeckSet
	m.emit(Event{Type: EventDeckSet, Actor: self.ID})

	// Demo-harness convenience only: hand the idle seat a fallback deck
	// so a single human plus stand-in session stays playable.
	if m.AutoAssignPeerDeck && peer != nil && len(peer.Deck) == 0 {
		fallback := m.FallbackFolderID
		if fallback == "" {
			fallback = folderID
		}
		peerDeck, err := m.Catalog.BuildDeck(fallback)
		if err != nil {
			return err
		}
		peer.Deck = peerDeck
		peer.SyncCounts()
		peer.Step = models.StepDeckSet
		m.emit(Event{Type: EventDeckSet, Actor: peer.ID})
	}
	return nil
}

// IsOpponentDeckSet reports whether the peer seat has chosen a deck.
func (m *Match) IsOpponentDeckSet(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	_, peer, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	return peer != nil && peer.Step != models.StepInLobby && len(peer.Deck) > 0, nil
}

// SetConnected flips a seat's connection flag; used by the transport.
func (m *Match) SetConnected(selfID uuid.UUID, connected bool) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return err
	}
	self.Connected = connected
	return nil
}

// removeCard takes the card with the given instance id out of a zone.
func removeCard(zone []*models.CardInstance, instanceID string) (*models.CardInstance, []*models.CardInstance, bool) {
	for i, c := range zone {
		if c.InstanceID == instanceID {
			rest := append(zone[:i:i], zone[i+1:]...)
			return c, rest, true
		}
	}
	return nil, zone, false
}

// findCard locates a card in a zone without removing it.
func findCard(zone []*models.CardInstance, instanceID string) *models.CardInstance {
	for _, c := range zone {
		if c.InstanceID == instanceID {
			return c
		}
	}
	return nil
}
