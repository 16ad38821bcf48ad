package match

import (
	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// InitiativeRule maps the initiative holder's mini-game choice to a
// binary "do I go first" outcome. The mini-game is deliberately
// pluggable; the reference rule is WhiteGoesFirst.
type InitiativeRule func(choice models.Color) bool

// WhiteGoesFirst is the reference rule: choosing white sends the
// submitter first, any other color sends the peer first.
func WhiteGoesFirst(choice models.Color) bool {
	return choice == models.ColorWhite
}

// IsMyMiniGameTurn reports whether the caller holds the mini-game
// initiative assigned at join time.
func (m *Match) IsMyMiniGameTurn(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if _, _, err := m.slots(selfID); err != nil {
		return false, err
	}
	return selfID == m.InitiativeHolderID, nil
}

// SubmitMiniGameChoice records the initiative holder's color choice and
// finalizes the first player. Only the holder may submit; a repeated
// submission after the first player is set is a no-op.
func (m *Match) SubmitMiniGameChoice(selfID uuid.UUID, choice models.Color) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, peer, err := m.slots(selfID)
	if err != nil {
		return err
	}
	if selfID != m.InitiativeHolderID {
		return ErrNotInitiativeHolder
	}
	if peer == nil {
		return ErrOpponentNotJoined
	}
	if m.FirstPlayerID != uuid.Nil {
		return nil
	}

	rule := m.InitiativeRule
	if rule == nil {
		rule = WhiteGoesFirst
	}
	if rule(choice) {
		m.FirstPlayerID = self.ID
	} else {
		m.FirstPlayerID = peer.ID
	}

	m.emit(Event{
		Type:  EventMiniGameResult,
		Actor: selfID,
		Color: choice,
		Payload: map[string]interface{}{
			"firstPlayer": m.FirstPlayerID.String(),
		},
	})
	return nil
}

// MiniGameResolved reports whether the first player has been decided.
func (m *Match) MiniGameResolved() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.FirstPlayerID != uuid.Nil
}

// AmIGoingFirst reports whether the caller won the initiative outcome.
func (m *Match) AmIGoingFirst(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if _, _, err := m.slots(selfID); err != nil {
		return false, err
	}
	return selfID == m.FirstPlayerID, nil
}
