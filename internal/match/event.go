package match

import (
	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// EventType is an enum-like type for broadcasting match state changes.
type EventType string

const (
	EventOpponentJoined  EventType = "opponent_joined"
	EventDeckSet         EventType = "deck_set"
	EventMiniGameResult  EventType = "minigame_result"
	EventReadyToDraw     EventType = "ready_to_draw"
	EventDrawResolved    EventType = "draw_resolved"
	EventPowerPhaseBegan EventType = "power_phase_began"
	EventPowerPlayed     EventType = "power_played"
	EventPassed          EventType = "participant_passed"
	EventActionAcked     EventType = "action_acknowledged"
	EventActionResolved  EventType = "action_resolved"
	EventBattleSet       EventType = "battle_cards_set"
)

// Event holds data about a state change that can be broadcast to the
// participants and journaled, in a consistent format.
type Event struct {
	Type    EventType              `json:"type"`
	Index   int                    `json:"index"`
	Actor   uuid.UUID              `json:"actor,omitempty"`
	Card    *models.CardInstance   `json:"card,omitempty"`
	Color   models.Color           `json:"color,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// emit assigns the next event index and invokes EmitFn if set. Callers
// must hold m.Mu.
func (m *Match) emit(ev Event) {
	ev.Index = m.eventIndex
	m.eventIndex++
	if m.EmitFn != nil {
		m.EmitFn(ev)
	}
}
