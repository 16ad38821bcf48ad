package match

import (
	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// ReadyToDraw marks the caller's step "draw cards". Once both seats
// reach this step the draw resolves exactly once for both: shuffle, deal
// HandSize cards, accrue color points from the drawn hand. Calling again
// after the seat has advanced is a no-op, so redundant polling is safe.
func (m *Match) ReadyToDraw(selfID uuid.UUID) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return err
	}
	if self.Step != models.StepDeckSet {
		return nil
	}
	self.Step = models.StepDrawCards
	m.emit(Event{Type: EventReadyToDraw, Actor: selfID})

	m.resolveDrawLocked()
	return nil
}

// IsOpponentReadyToDraw reports whether the peer has reached the draw
// barrier or is already past it.
func (m *Match) IsOpponentReadyToDraw(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	_, peer, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	if peer == nil {
		return false, nil
	}
	return peer.Step != models.StepInLobby && peer.Step != models.StepDeckSet, nil
}

// resolveDrawLocked is the both-ready barrier. It fires only when both
// seats sit exactly at StepDrawCards, which also makes it idempotent:
// once it runs, both steps advance and re-evaluation is a no-op.
func (m *Match) resolveDrawLocked() {
	if m.Creator == nil || m.Joiner == nil {
		return
	}
	if m.Creator.Step != models.StepDrawCards || m.Joiner.Step != models.StepDrawCards {
		return
	}

	for _, p := range []*models.Participant{m.Creator, m.Joiner} {
		m.Rng.Shuffle(len(p.Deck), func(i, j int) {
			p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
		})

		n := HandSize
		if n > len(p.Deck) {
			n = len(p.Deck)
		}
		dealt := p.Deck[:n]
		p.Hand = append(p.Hand, dealt...)
		p.Deck = p.Deck[n:]

		// Orange is wild and accrues nothing.
		for _, c := range dealt {
			if !c.IsWild() {
				p.Board.ColorPoints[c.Color]++
			}
		}

		p.SyncCounts()
		p.Step = models.StepWaitingToPlay

		m.emit(Event{
			Type:  EventDrawResolved,
			Actor: p.ID,
			Payload: map[string]interface{}{
				"handCount": p.Board.HandCount,
				"deckCount": p.Board.DeckCount,
			},
		})
	}
}
