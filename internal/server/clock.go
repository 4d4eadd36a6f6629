// ABOUTME: Broadcast clock websocket
// ABOUTME: Pushes seconds since midnight plus the shared offset to every client
package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/gtaradio-go/internal/metrics"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// ClockTick is the message sent on /ws
type ClockTick struct {
	Type     string `json:"type"`
	ServerID string `json:"server_id"`
	// Time is local seconds since midnight
	Time   float64 `json:"time"`
	Offset int     `json:"offset"`
	// Broadcast is Time plus Offset, the value every client positions against
	Broadcast float64 `json:"broadcast"`
	// Targets holds the target position of each station with a known duration
	Targets map[string]float64 `json:"targets,omitempty"`
}

// client is one connected clock listener
type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan ClockTick
}

// handleWebSocket upgrades the connection and streams clock ticks
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		writeError(w, http.StatusServiceUnavailable, "server shutting down")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade error", "error", err)
		return
	}

	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan ClockTick, 16),
	}
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	metrics.WebsocketClients.Inc()
	s.logger.Infow("clock client connected", "client", c.id, "remote", r.RemoteAddr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	// First tick goes out immediately
	c.sendChan <- s.tick()

	s.readLoop(c)

	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
	close(c.sendChan)
	metrics.WebsocketClients.Dec()
	s.logger.Infow("clock client disconnected", "client", c.id)
}

// readLoop discards client messages until the connection closes
func (s *Server) readLoop(c *client) {
	defer c.conn.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debugw("websocket read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

// clientWriter sends queued and periodic ticks to one client
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		var msg ClockTick
		select {
		case m, ok := <-c.sendChan:
			if !ok {
				return
			}
			msg = m
		case <-ticker.C:
			msg = s.tick()
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
			continue
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := c.conn.WriteJSON(msg); err != nil {
			s.logger.Debugw("websocket write error", "client", c.id, "error", err)
			c.conn.Close()
			return
		}
	}
}

// tick builds a clock message for the current instant
func (s *Server) tick() ClockTick {
	now := gtsync.SecondsSinceMidnight(s.config.Clock.Now())
	offset := s.session.Offset()

	msg := ClockTick{
		Type:      "clock",
		ServerID:  s.serverID,
		Time:      now,
		Offset:    offset,
		Broadcast: now + float64(offset),
	}

	s.durationsMu.RLock()
	if len(s.durations) > 0 {
		msg.Targets = make(map[string]float64, len(s.durations))
		for id, meta := range s.durations {
			msg.Targets[id] = gtsync.TargetPosition(meta.duration, float64(offset), now)
		}
	}
	s.durationsMu.RUnlock()
	return msg
}

// broadcastTick pushes a tick to every client without waiting for the timer.
// Clients with a full queue skip this one.
func (s *Server) broadcastTick() {
	msg := s.tick()

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.sendChan <- msg:
		default:
			s.logger.Debugw("client send buffer full", "client", c.id)
		}
	}
}

// ClientCount returns the number of connected clock clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.conn.Close()
	}
}
