package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/emersongin/cardbattle-service/internal/auth"
	"github.com/emersongin/cardbattle-service/internal/cache"
	"github.com/emersongin/cardbattle-service/internal/catalog"
	"github.com/emersongin/cardbattle-service/internal/match"
)

// RoomServer owns the match store, the catalog and the per-room
// connection hubs. It is the boundary between transports and the match
// core: HTTP for create/join/queries, WebSocket for commands and pushed
// events.
type RoomServer struct {
	Logger  *log.Logger
	Store   *match.Store
	Catalog *catalog.Catalog

	mu   sync.Mutex
	hubs map[uuid.UUID]*roomHub
}

func NewRoomServer(logger *log.Logger, cat *catalog.Catalog) *RoomServer {
	return &RoomServer{
		Logger:  logger,
		Store:   match.NewStore(),
		Catalog: cat,
		hubs:    make(map[uuid.UUID]*roomHub),
	}
}

// hub returns (creating if needed) the connection hub for a room.
func (rs *RoomServer) hub(roomID uuid.UUID) *roomHub {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	h, ok := rs.hubs[roomID]
	if !ok {
		h = newRoomHub()
		rs.hubs[roomID] = h
	}
	return h
}

// newMatch constructs a match with its own rng and wires event
// publication: every core event is broadcast to the room's connections
// and journaled to Redis when the journal is connected.
func (rs *RoomServer) newMatch() *match.Match {
	m := match.New(rs.Catalog, rand.New(rand.NewSource(time.Now().UnixNano())))

	roomID := m.RoomID
	m.EmitFn = func(ev match.Event) {
		// Called with the match lock held: hand off without blocking.
		rs.hub(roomID).broadcast(ev)

		if cache.Rdb != nil {
			record := cache.MatchEventRecord{
				RoomID:       roomID,
				EventIndex:   ev.Index,
				ActorID:      ev.Actor,
				EventType:    string(ev.Type),
				EventPayload: ev.Payload,
				Timestamp:    time.Now().UnixMilli(),
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := cache.PublishMatchEvent(ctx, record); err != nil {
					rs.Logger.Warnf("failed to journal event %s for room %s: %v", ev.Type, roomID, err)
				}
			}()
		}
	}
	return m
}

// roomResponse is the payload for both create and join.
type roomResponse struct {
	RoomID        string `json:"roomId"`
	ParticipantID string `json:"participantId"`
	Token         string `json:"token"`
}

// CreateRoomHandler allocates a fresh room and the creator seat,
// returning both ids plus a session token for the seat.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		m := rs.newMatch()
		rs.Store.Add(m)

		token, err := auth.CreateParticipantToken(m.Creator.ID.String(), m.RoomID.String())
		if err != nil {
			rs.Logger.Errorf("failed to mint token for room %s: %v", m.RoomID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rs.Logger.Infof("Room %s created, creator %s", m.RoomID, m.Creator.ID)
		writeJSON(w, http.StatusCreated, roomResponse{
			RoomID:        m.RoomID.String(),
			ParticipantID: m.Creator.ID.String(),
			Token:         token,
		})
	}
}

// JoinRoomHandler binds the joiner seat of an existing room. An unknown
// room id is a recoverable not-found, surfaced as 404.
func JoinRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			RoomID string `json:"roomId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		roomID, err := uuid.Parse(req.RoomID)
		if err != nil {
			http.Error(w, "invalid roomId", http.StatusBadRequest)
			return
		}

		m, ok := rs.Store.Get(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		joinerID, err := m.Join()
		if err != nil {
			if errors.Is(err, match.ErrRoomFull) {
				http.Error(w, "room is full", http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		token, err := auth.CreateParticipantToken(joinerID.String(), roomID.String())
		if err != nil {
			rs.Logger.Errorf("failed to mint token for room %s: %v", roomID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rs.Logger.Infof("Room %s joined by %s", roomID, joinerID)
		writeJSON(w, http.StatusOK, roomResponse{
			RoomID:        roomID.String(),
			ParticipantID: joinerID.String(),
			Token:         token,
		})
	}
}

// ListFoldersHandler returns the deck-selection menu data.
func ListFoldersHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rs.Catalog.ListFolders())
	}
}

// RoomStateHandler returns the caller's role-relative snapshot; it is
// the polling fallback for clients without a live WebSocket.
func RoomStateHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, participantID, ok := rs.authenticateRequest(w, r)
		if !ok {
			return
		}

		view, err := m.Snapshot(participantID)
		if err != nil {
			http.Error(w, "not a participant of this room", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// authenticateRequest resolves the session token on an HTTP request to
// the match and participant it grants access to.
func (rs *RoomServer) authenticateRequest(w http.ResponseWriter, r *http.Request) (*match.Match, uuid.UUID, bool) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing session token", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	participantStr, roomStr, err := auth.AuthenticateToken(token)
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}
	participantID, err1 := uuid.Parse(participantStr)
	roomID, err2 := uuid.Parse(roomStr)
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	m, ok := rs.Store.Get(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, uuid.Nil, false
	}
	return m, participantID, true
}

// bearerToken pulls the session token from the Authorization header or,
// failing that, the "token" query parameter (used by WebSocket clients).
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

// PingHandler is a trivial liveness endpoint.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
