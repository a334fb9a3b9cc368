package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/observability"
)

const rosterSendBufferSize = 16

// RosterNotifier receives roster updates after the per-session lock has been
// released. Implementations must be best-effort: a failed delivery never
// affects the roster itself.
type RosterNotifier interface {
	RosterChanged(ctx context.Context, update dto.RosterUpdate)
}

// RosterFeed fans roster updates out to live websocket subscribers and, when
// configured, across nodes via NATS.
type RosterFeed struct {
	nats        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
	nodeID      string

	mu       sync.RWMutex
	sessions map[uint]map[*rosterClient]struct{}
}

type rosterClient struct {
	conn   *websocket.Conn
	send   chan dto.RosterUpdate
	closed chan struct{}
	once   sync.Once
}

type rosterEvent struct {
	Source string           `json:"source"`
	Update dto.RosterUpdate `json:"update"`
	SentAt time.Time        `json:"sent_at"`
}

// NewRosterFeed creates the live roster fan-out. natsConn may be nil for
// single-node deployments.
func NewRosterFeed(natsConn *nats.Conn, subjectBase string, logger zerolog.Logger) *RosterFeed {
	if subjectBase == "" {
		subjectBase = "attendance.roster"
	}

	return &RosterFeed{
		nats:        natsConn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "roster_feed").Logger(),
		nodeID:      uuid.NewString(),
		sessions:    make(map[uint]map[*rosterClient]struct{}),
	}
}

// Start subscribes to roster updates published by other nodes.
func (f *RosterFeed) Start(ctx context.Context) {
	if f.nats == nil {
		return
	}

	subject := f.subjectBase + ".>"
	sub, err := f.nats.Subscribe(subject, func(msg *nats.Msg) {
		var event rosterEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			f.logger.Warn().Err(err).Msg("malformed roster event from nats")
			return
		}
		if event.Source == f.nodeID {
			return
		}
		f.broadcast(event.Update)
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to subscribe to roster subject")
		return
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
}

// RosterChanged implements RosterNotifier.
func (f *RosterFeed) RosterChanged(ctx context.Context, update dto.RosterUpdate) {
	f.broadcast(update)

	if f.nats == nil {
		return
	}

	event := rosterEvent{Source: f.nodeID, Update: update, SentAt: time.Now()}
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to marshal roster event")
		return
	}

	subject := fmt.Sprintf("%s.%d", f.subjectBase, update.SessionID)
	if err := f.nats.Publish(subject, payload); err != nil {
		f.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish roster event")
	}
}

func (f *RosterFeed) broadcast(update dto.RosterUpdate) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for client := range f.sessions[update.SessionID] {
		select {
		case client.send <- update:
		default:
			// Slow consumer; drop the update rather than block the feed.
		}
	}
}

// ServeConnection pumps roster updates to one websocket client until it
// disconnects.
func (f *RosterFeed) ServeConnection(conn *websocket.Conn, sessionID uint) {
	client := &rosterClient{
		conn:   conn,
		send:   make(chan dto.RosterUpdate, rosterSendBufferSize),
		closed: make(chan struct{}),
	}

	f.register(sessionID, client)
	observability.LiveRosterClients().Inc()
	defer func() {
		f.unregister(sessionID, client)
		observability.LiveRosterClients().Dec()
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				client.close()
				return
			}
		}
	}()

	for {
		select {
		case update := <-client.send:
			if err := conn.WriteJSON(update); err != nil {
				client.close()
				return
			}
		case <-client.closed:
			return
		}
	}
}

func (c *rosterClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (f *RosterFeed) register(sessionID uint, client *rosterClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sessions[sessionID] == nil {
		f.sessions[sessionID] = make(map[*rosterClient]struct{})
	}
	f.sessions[sessionID][client] = struct{}{}
}

func (f *RosterFeed) unregister(sessionID uint, client *rosterClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions[sessionID], client)
	if len(f.sessions[sessionID]) == 0 {
		delete(f.sessions, sessionID)
	}
}
