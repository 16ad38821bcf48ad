package match

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// Directive tells a polling participant what the play loop requires of
// it next. It is computed purely from shared state (field size and pass
// flags), never from wall-clock turn order, so the loop is resumable by
// either side at any time.
type Directive string

const (
	DirectiveResolveTriggers Directive = "resolve_triggers"
	DirectiveNextPhase       Directive = "next_phase"
	DirectiveYourTurn        Directive = "your_turn"
	DirectiveWait            Directive = "wait"
)

// BeginPowerPhase is the barrier that opens a play micro-round: once
// both seats sit at "waiting to play", the first player flips to
// "in play" and pass flags clear. Safe to call redundantly.
func (m *Match) BeginPowerPhase() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.beginPowerPhaseLocked()
}

func (m *Match) beginPowerPhaseLocked() {
	if m.Creator == nil || m.Joiner == nil || m.FirstPlayerID == uuid.Nil {
		return
	}
	if m.Creator.Step != models.StepWaitingToPlay || m.Joiner.Step != models.StepWaitingToPlay {
		return
	}

	first := m.participantByID(m.FirstPlayerID)
	first.Step = models.StepInPlay
	m.Creator.Board.HasPassed = false
	m.Joiner.Board.HasPassed = false

	m.emit(Event{Type: EventPowerPhaseBegan, Actor: first.ID})
}

// HasPowerCardInHand gates whether playing a power card is offerable.
func (m *Match) HasPowerCardInHand(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	for _, c := range self.Hand {
		if c.Kind == models.KindPower {
			return true, nil
		}
	}
	return false, nil
}

// PlayPowerCard removes the named power card from the caller's hand,
// appends a pending record to the shared field and ends the caller's
// turn. If the field limit is not yet reached after the append, the
// turn flips to the peer; a full field leaves the peer untouched.
//
// The card id must name a power card currently in hand; anything else
// is an engine/caller bug, not a recoverable game state.
func (m *Match) PlayPowerCard(selfID uuid.UUID, cardInstanceID string, config map[string]interface{}) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, peer, err := m.slots(selfID)
	if err != nil {
		return err
	}
	if self.Step != models.StepInPlay {
		return ErrNotYourTurn
	}
	if len(m.Field) >= FieldLimit {
		return fmt.Errorf("field limit reached: %d pending actions", len(m.Field))
	}

	card := findCard(self.Hand, cardInstanceID)
	if card == nil {
		return fmt.Errorf("%w: power card %s not in hand", ErrCardNotFound, cardInstanceID)
	}
	if card.Kind != models.KindPower {
		return fmt.Errorf("%w: %s is not a power card", ErrWrongCardKind, cardInstanceID)
	}

	card, rest, _ := removeCard(self.Hand, cardInstanceID)
	self.Hand = rest
	self.SyncCounts()

	m.Field = append(m.Field, &models.PowerActionRecord{
		ActorID:   selfID,
		PowerCard: card,
		Config:    config,
	})

	self.Step = models.StepPassed
	self.Board.HasPassed = true

	// Hand the turn over only while the field can still take a play.
	if len(m.Field) < FieldLimit && peer != nil {
		peer.Step = models.StepInPlay
		peer.Board.HasPassed = false
	}

	m.emit(Event{
		Type:  EventPowerPlayed,
		Actor: selfID,
		Card:  card,
		Payload: map[string]interface{}{
			"fieldSize": len(m.Field),
		},
	})
	return nil
}

// Pass ends the caller's turn without touching the field.
func (m *Match) Pass(selfID uuid.UUID) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return err
	}
	if self.Step != models.StepInPlay {
		return ErrNotYourTurn
	}
	self.Step = models.StepPassed
	self.Board.HasPassed = true

	m.emit(Event{Type: EventPassed, Actor: selfID})
	return nil
}

// IsFieldLimitReached reports whether the shared field is full.
func (m *Match) IsFieldLimitReached() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Field) >= FieldLimit
}

// HasFieldActions reports whether any power action is pending.
func (m *Match) HasFieldActions() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Field) > 0
}

// AllPassed reports whether both seats have ended their turn.
func (m *Match) AllPassed() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.allPassedLocked()
}

func (m *Match) allPassedLocked() bool {
	return m.Creator != nil && m.Joiner != nil &&
		m.Creator.Step == models.StepPassed && m.Joiner.Step == models.StepPassed
}

// IsOpponentPassed reports whether the peer has ended its turn.
func (m *Match) IsOpponentPassed(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	_, peer, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	return peer != nil && peer.Step == models.StepPassed, nil
}

// NextPlayDirective computes the caller's next obligation from current
// shared state, applying the exit conditions in priority order: full
// field, then all-passed, then turn handoff. It also evaluates the
// phase-opening barrier, so a poller that missed intermediate events
// still converges on the right action.
func (m *Match) NextPlayDirective(selfID uuid.UUID) (Directive, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, peer, err := m.slots(selfID)
	if err != nil {
		return "", err
	}
	if peer == nil {
		return DirectiveWait, nil
	}

	m.beginPowerPhaseLocked()

	switch {
	case len(m.Field) >= FieldLimit:
		return DirectiveResolveTriggers, nil
	case m.allPassedLocked():
		if len(m.Field) > 0 {
			return DirectiveResolveTriggers, nil
		}
		return DirectiveNextPhase, nil
	case self.Step == models.StepInPlay:
		return DirectiveYourTurn, nil
	case peer.Step == models.StepPassed && self.Step == models.StepWaitingToPlay:
		// The peer already passed; the turn is the caller's.
		self.Step = models.StepInPlay
		return DirectiveYourTurn, nil
	default:
		return DirectiveWait, nil
	}
}
