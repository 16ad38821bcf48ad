package models

import "github.com/google/uuid"

// PowerActionRecord is a pending power effect on the shared field.
// PlayerAcked belongs to the creator seat and OpponentAcked to the
// joiner seat. A record is retired only once both flags are true, so a
// fast poller can never consume an effect the slow side has not seen.
type PowerActionRecord struct {
	ActorID       uuid.UUID              `json:"actorId"`
	PowerCard     *CardInstance          `json:"powerCard"`
	Config        map[string]interface{} `json:"config,omitempty"`
	PlayerAcked   bool                   `json:"playerAcked"`
	OpponentAcked bool                   `json:"opponentAcked"`
}
