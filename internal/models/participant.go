package models

import "github.com/google/uuid"

// Step marks how far a participant has progressed through the match's
// phase sequence. Steps only move forward except for the play loop,
// where a seat cycles between waiting_to_play, in_play and passed.
type Step string

const (
	StepInLobby       Step = "in_lobby"
	StepDeckSet       Step = "deck_set"
	StepDrawCards     Step = "draw_cards"
	StepWaitingToPlay Step = "waiting_to_play"
	StepInPlay        Step = "in_play"
	StepPassed        Step = "passed"
	StepBattleSet     Step = "battle_cards_set"
)

// BoardState aggregates a participant's public counters. HandCount,
// DeckCount and TrashCount mirror the zone cardinalities and are
// resynchronized after every zone mutation.
type BoardState struct {
	Attack      int           `json:"attack"`
	Health      int           `json:"health"`
	ColorPoints map[Color]int `json:"colorPoints"`
	HandCount   int           `json:"handCount"`
	DeckCount   int           `json:"deckCount"`
	TrashCount  int           `json:"trashCount"`
	Wins        int           `json:"wins"`
	HasPassed   bool          `json:"hasPassed"`
}

// NewBoardState returns a zeroed board with every point color present
// in the map, so callers can index without nil checks.
func NewBoardState() BoardState {
	points := make(map[Color]int, len(PointColors))
	for _, c := range PointColors {
		points[c] = 0
	}
	return BoardState{ColorPoints: points}
}

// Participant is one seat of a match. A card instance belongs to exactly
// one of Deck, Hand, Trash, BattleCardSet or the match's shared field at
// any time.
type Participant struct {
	ID            uuid.UUID       `json:"id"`
	Step          Step            `json:"step"`
	Deck          []*CardInstance `json:"-"`
	Hand          []*CardInstance `json:"-"`
	Trash         []*CardInstance `json:"-"`
	BattleCardSet []*CardInstance `json:"-"`
	Board         BoardState      `json:"board"`

	Connected bool `json:"connected"`
}

// SyncCounts refreshes the derived zone counters from the zones.
func (p *Participant) SyncCounts() {
	p.Board.HandCount = len(p.Hand)
	p.Board.DeckCount = len(p.Deck)
	p.Board.TrashCount = len(p.Trash)
}
