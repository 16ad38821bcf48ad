package match

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// HasSufficientPoints reports whether a board can afford a card of the
// given color and cost. Orange is wild and always affordable.
func HasSufficientPoints(color models.Color, cost int, board models.BoardState) bool {
	if color == models.ColorOrange {
		return true
	}
	return board.ColorPoints[color] >= cost
}

// CommitBattleCards moves the named cards from hand to the battle set,
// debits non-Orange color points by cost and recomputes the board's
// attack/health totals. Debits are not validated against availability;
// point totals may go negative (see DESIGN.md). The move is atomic: if
// any id is missing from hand, nothing is transferred.
func (m *Match) CommitBattleCards(selfID uuid.UUID, cardIDs []string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return err
	}

	for _, id := range cardIDs {
		card := findCard(self.Hand, id)
		if card == nil {
			return fmt.Errorf("%w: battle card %s not in hand", ErrCardNotFound, id)
		}
		if card.Kind != models.KindBattle {
			return fmt.Errorf("%w: %s is not a battle card", ErrWrongCardKind, id)
		}
	}

	for _, id := range cardIDs {
		card, rest, _ := removeCard(self.Hand, id)
		self.Hand = rest
		self.BattleCardSet = append(self.BattleCardSet, card)
		if !card.IsWild() {
			self.Board.ColorPoints[card.Color] -= card.Cost
		}
	}

	attack, health := 0, 0
	for _, c := range self.BattleCardSet {
		attack += c.Attack
		health += c.Health
	}
	self.Board.Attack = attack
	self.Board.Health = health
	self.SyncCounts()
	self.Step = models.StepBattleSet

	m.emit(Event{
		Type:  EventBattleSet,
		Actor: selfID,
		Payload: map[string]interface{}{
			"attack": attack,
			"health": health,
			"count":  len(self.BattleCardSet),
		},
	})
	return nil
}

// AutoSelectBattleCards picks a legal battle-card subset from the
// caller's hand, greedily in hand order, respecting running point
// availability. It is a convenience for a non-interactive seat; an
// interactive client should offer the selection and call
// CommitBattleCards itself.
func (m *Match) AutoSelectBattleCards(selfID uuid.UUID) ([]string, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return nil, err
	}

	remaining := make(map[models.Color]int, len(self.Board.ColorPoints))
	for c, n := range self.Board.ColorPoints {
		remaining[c] = n
	}

	var picked []string
	for _, card := range self.Hand {
		if card.Kind != models.KindBattle {
			continue
		}
		if card.IsWild() {
			picked = append(picked, card.InstanceID)
			continue
		}
		if remaining[card.Color] >= card.Cost {
			remaining[card.Color] -= card.Cost
			picked = append(picked, card.InstanceID)
		}
	}
	return picked, nil
}

// IsOpponentBattleCardsSet reports whether the peer has committed.
func (m *Match) IsOpponentBattleCardsSet(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	_, peer, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	return peer != nil && peer.Step == models.StepBattleSet, nil
}
