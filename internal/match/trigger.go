package match

import (
	"github.com/google/uuid"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// ackFlag returns the caller's role-relative ack flag on a record: the
// creator seat owns PlayerAcked, the joiner seat OpponentAcked.
func (m *Match) ackFlag(rec *models.PowerActionRecord, self *models.Participant) *bool {
	if self == m.Creator {
		return &rec.PlayerAcked
	}
	return &rec.OpponentAcked
}

// NextUnseenAction returns a copy of the oldest field record the caller
// has not yet acknowledged, or nil when the caller has seen everything.
// Each seat drains the queue at its own pace; records stay visible to
// the slower seat until it acknowledges them.
func (m *Match) NextUnseenAction(selfID uuid.UUID) (*models.PowerActionRecord, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return nil, err
	}
	for _, rec := range m.Field {
		if !*m.ackFlag(rec, self) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

// AcknowledgeAction sets the caller's role-relative ack flag on the
// record holding the named power card, then purges every record both
// seats have acknowledged. A purged record's card moves to the trash of
// whoever originally played it, resolved by identity rather than role.
// An id
// that matches no pending record is a no-op, tolerating redundant polls.
func (m *Match) AcknowledgeAction(selfID uuid.UUID, powerCardID string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return err
	}

	for _, rec := range m.Field {
		if rec.PowerCard.InstanceID == powerCardID {
			*m.ackFlag(rec, self) = true
			m.emit(Event{Type: EventActionAcked, Actor: selfID, Card: rec.PowerCard})
			break
		}
	}

	m.purgeAckedLocked()
	return nil
}

// purgeAckedLocked retires every record with both flags set, exactly
// once. Removing a record on a single ack would let a fast poller
// consume an effect the slow seat never saw.
func (m *Match) purgeAckedLocked() {
	kept := m.Field[:0]
	for _, rec := range m.Field {
		if rec.PlayerAcked && rec.OpponentAcked {
			if actor := m.participantByID(rec.ActorID); actor != nil {
				actor.Trash = append(actor.Trash, rec.PowerCard)
				actor.SyncCounts()
			}
			m.emit(Event{Type: EventActionResolved, Actor: rec.ActorID, Card: rec.PowerCard})
			continue
		}
		kept = append(kept, rec)
	}
	m.Field = kept
}

// HasUnseenActions reports whether any record still awaits the caller's
// acknowledgement. When nothing is left to see, the caller's step
// returns to "waiting to play" for the next micro-round.
func (m *Match) HasUnseenActions(selfID uuid.UUID) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	self, _, err := m.slots(selfID)
	if err != nil {
		return false, err
	}
	for _, rec := range m.Field {
		if !*m.ackFlag(rec, self) {
			return true, nil
		}
	}
	if self.Step == models.StepPassed {
		self.Step = models.StepWaitingToPlay
		self.Board.HasPassed = false
	}
	return false, nil
}
