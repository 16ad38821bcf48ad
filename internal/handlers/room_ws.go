package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emersongin/cardbattle-service/internal/auth"
	"github.com/emersongin/cardbattle-service/internal/match"
	"github.com/emersongin/cardbattle-service/internal/middleware"
	"github.com/emersongin/cardbattle-service/internal/models"
)

// RoomMessage is the structure for incoming WebSocket commands. Each
// command maps onto one match-core operation; the fields used depend on
// the type.
type RoomMessage struct {
	Type     string                 `json:"type"`
	FolderID string                 `json:"folderId,omitempty"`
	Color    string                 `json:"color,omitempty"`
	CardID   string                 `json:"cardId,omitempty"`
	CardIDs  []string               `json:"cardIds,omitempty"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// RoomWSHandler upgrades the HTTP connection to a WebSocket bound to one
// seat of one room. It authenticates the participant token, verifies the
// seat, registers the connection and runs the read loop. Every state
// change the core applies is pushed to both seats as an event, replacing
// the polled "listen" calls of the reference transport.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/room/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing room_id in path (/room/ws/{room_id})", http.StatusBadRequest)
			return
		}
		roomID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid room_id format", http.StatusBadRequest)
			return
		}

		m, ok := rs.Store.Get(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"cardbattle"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "cardbattle" {
			c.Close(BadSubprotocolError, "client must use the 'cardbattle' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		// Authenticate the seat.
		token := bearerToken(r)
		participantStr, tokenRoomStr, err := auth.AuthenticateToken(token)
		if err != nil {
			logger.Warnf("WS auth failed for room %s: %v", roomID, err)
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}
		participantID, err := uuid.Parse(participantStr)
		if err != nil || tokenRoomStr != roomID.String() {
			c.Close(InvalidAuthTokenError, "token does not grant access to this room")
			return
		}
		if err := m.SetConnected(participantID, true); err != nil {
			c.Close(NotASeatError, "you hold no seat in this room")
			return
		}
		logger.Infof("Participant %s attached to room %s", participantID, roomID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &roomClient{
			participantID: participantID,
			cancel:        cancel,
			outChan:       make(chan interface{}, 32),
		}
		hub := rs.hub(roomID)
		hub.add(client)

		// Initial state sync so a reconnecting client catches up without
		// replaying events.
		if view, err := m.Snapshot(participantID); err == nil {
			client.send(map[string]interface{}{"type": "snapshot", "state": view})
		}

		go writePump(ctx, c, client, logger)
		readRoomMessages(ctx, c, m, client, logger)

		// Cleanup after the read loop exits.
		hub.remove(client)
		if err := m.SetConnected(participantID, false); err == nil {
			logger.Infof("Participant %s detached from room %s", participantID, roomID)
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readRoomMessages continuously reads commands from the client and
// routes them to the match core. It exits on read error or context
// cancellation.
func readRoomMessages(ctx context.Context, c *websocket.Conn, m *match.Match, client *roomClient, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for participant %s in room %s", client.participantID, m.RoomID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for participant %s in room %s", client.participantID, m.RoomID)
			} else {
				logger.Warnf("Read error for participant %s in room %s: %v", client.participantID, m.RoomID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Ignoring non-text message from participant %s", client.participantID)
			continue
		}

		var msg RoomMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from participant %s: %v", client.participantID, err)
			client.send(wsError("invalid JSON format"))
			continue
		}

		dispatchRoomMessage(m, client, msg, logger)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// dispatchRoomMessage maps one command to the corresponding match
// operation and queues the reply, if any.
func dispatchRoomMessage(m *match.Match, client *roomClient, msg RoomMessage, logger *logrus.Logger) {
	selfID := client.participantID

	var err error
	switch msg.Type {
	case "choose_folder":
		err = m.ChooseFolder(selfID, msg.FolderID)

	case "minigame_choice":
		err = m.SubmitMiniGameChoice(selfID, models.Color(msg.Color))

	case "ready_to_draw":
		err = m.ReadyToDraw(selfID)

	case "play_power_card":
		err = m.PlayPowerCard(selfID, msg.CardID, msg.Config)

	case "pass":
		err = m.Pass(selfID)

	case "acknowledge_action":
		err = m.AcknowledgeAction(selfID, msg.CardID)

	case "next_unseen_action":
		var rec *models.PowerActionRecord
		rec, err = m.NextUnseenAction(selfID)
		if err == nil {
			client.send(map[string]interface{}{"type": "unseen_action", "record": rec})
		}

	case "has_unseen_actions":
		var pending bool
		pending, err = m.HasUnseenActions(selfID)
		if err == nil {
			client.send(map[string]interface{}{"type": "unseen_actions", "pending": pending})
		}

	case "commit_battle_cards":
		err = m.CommitBattleCards(selfID, msg.CardIDs)

	case "auto_commit_battle":
		var picked []string
		picked, err = m.AutoSelectBattleCards(selfID)
		if err == nil {
			err = m.CommitBattleCards(selfID, picked)
		}

	case "resume":
		var d match.Directive
		d, err = m.NextPlayDirective(selfID)
		if err == nil {
			client.send(map[string]interface{}{"type": "directive", "directive": d})
		}

	case "snapshot":
		var view *match.View
		view, err = m.Snapshot(selfID)
		if err == nil {
			client.send(map[string]interface{}{"type": "snapshot", "state": view})
		}

	case "ping":
		client.send(map[string]string{"type": "pong"})

	default:
		client.send(wsError(fmt.Sprintf("unknown command type: %s", msg.Type)))
		return
	}

	if err != nil {
		if errors.Is(err, match.ErrUnknownParticipant) ||
			errors.Is(err, match.ErrCardNotFound) ||
			errors.Is(err, match.ErrWrongCardKind) {
			// Engine/caller bug, not a recoverable game state.
			logger.Errorf("invariant violation in room %s, command %s: %v", m.RoomID, msg.Type, err)
		}
		client.send(wsError(err.Error()))
	}
}

// writePump drains the client's outbound queue onto the socket and
// keeps the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, client *roomClient, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.outChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for participant %s: %v", client.participantID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for participant %s: %v", client.participantID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for participant %s, assuming disconnect: %v", client.participantID, err)
				return
			}
		}
	}
}

func wsError(msg string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "error",
		"message": msg,
	}
}
