package match

import (
	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// ParticipantView is one seat as seen from a given perspective. Hand
// contents are only populated for the viewer's own seat; the peer is
// reduced to its public board counters.
type ParticipantView struct {
	ID            uuid.UUID               `json:"id"`
	Step          models.Step             `json:"step"`
	Board         models.BoardState       `json:"board"`
	Hand          []*models.CardInstance  `json:"hand,omitempty"`
	BattleCardSet []*models.CardInstance  `json:"battleCardSet,omitempty"`
	Connected     bool                    `json:"connected"`
}

// FieldRecordView is a pending power action as seen from a perspective:
// ack flags are translated to self/peer relative to the viewer.
type FieldRecordView struct {
	Card         *models.CardInstance   `json:"card"`
	Config       map[string]interface{} `json:"config,omitempty"`
	Mine         bool                   `json:"mine"`
	AckedBySelf  bool                   `json:"ackedBySelf"`
	AckedByPeer  bool                   `json:"ackedByPeer"`
}

// View is a role-relative snapshot of the whole match, consumed by the
// rendering layer. It never exposes the peer's hand or deck contents.
type View struct {
	RoomID            uuid.UUID        `json:"roomId"`
	You               ParticipantView  `json:"you"`
	Opponent          *ParticipantView `json:"opponent,omitempty"`
	MyMiniGameTurn    bool             `json:"myMiniGameTurn"`
	MiniGameResolved  bool             `json:"miniGameResolved"`
	GoingFirst        bool             `json:"goingFirst"`
	Field             []FieldRecordView `json:"field"`
	FieldLimitReached bool             `json:"fieldLimitReached"`
}

// Snapshot builds the caller's view of the match. The two seats' views
// of the same state are mirror images of each other.
func (m *Match) Snapshot(selfID uuid.UUID) (*View, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, peer, err := m.slots(selfID)
	if err != nil {
		return nil, err
	}

	v := &View{
		RoomID:            m.RoomID,
		You:               viewOf(self, true),
		MyMiniGameTurn:    selfID == m.InitiativeHolderID,
		MiniGameResolved:  m.FirstPlayerID != uuid.Nil,
		GoingFirst:        selfID == m.FirstPlayerID,
		FieldLimitReached: len(m.Field) >= FieldLimit,
		Field:             make([]FieldRecordView, 0, len(m.Field)),
	}
	if peer != nil {
		pv := viewOf(peer, false)
		v.Opponent = &pv
	}

	for _, rec := range m.Field {
		selfAck, peerAck := rec.PlayerAcked, rec.OpponentAcked
		if self == m.Joiner {
			selfAck, peerAck = peerAck, selfAck
		}
		v.Field = append(v.Field, FieldRecordView{
			Card:        rec.PowerCard,
			Config:      rec.Config,
			Mine:        rec.ActorID == selfID,
			AckedBySelf: selfAck,
			AckedByPeer: peerAck,
		})
	}
	return v, nil
}

func viewOf(p *models.Participant, includeHand bool) ParticipantView {
	board := p.Board
	board.ColorPoints = make(map[models.Color]int, len(p.Board.ColorPoints))
	for c, n := range p.Board.ColorPoints {
		board.ColorPoints[c] = n
	}

	pv := ParticipantView{
		ID:        p.ID,
		Step:      p.Step,
		Board:     board,
		Connected: p.Connected,
	}
	if includeHand {
		pv.Hand = append([]*models.CardInstance(nil), p.Hand...)
		pv.BattleCardSet = append([]*models.CardInstance(nil), p.BattleCardSet...)
	}
	return pv
}
