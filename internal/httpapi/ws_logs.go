// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	worker "dbc/internal/workerpool"
)

// clientBacklog bounds how many unread lines a slow /ws/logs subscriber can
// accumulate before new lines are dropped for it (spec §6: "GET /ws/logs
// streams structured log lines; slow readers must not back-pressure the
// gateway").
const clientBacklog = 1024

// Hub fans gateway log lines out to every connected /ws/logs subscriber. It
// implements io.Writer so it can be teed into the process logger's output
// alongside the usual stderr sink.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}

	lines   chan string
	workers int
}

// NewHub creates a Hub whose broadcast fan-out uses at most workers
// goroutines concurrently per line. A Hub must be started with Run before
// any writes are delivered.
func NewHub(workers int) *Hub {
	if workers < 1 {
		workers = 1
	}
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		lines:   make(chan string, 256),
		workers: workers,
	}
}

// Write satisfies io.Writer; each call is treated as one log line.
func (h *Hub) Write(p []byte) (int, error) {
	line := string(p)
	select {
	case h.lines <- line:
	default:
		// Backlog full: drop rather than stall the logger.
	}
	return len(p), nil
}

// Run drains queued lines and broadcasts each in turn until ctx is done.
// Broadcasts are serialized: only one is ever in flight, so no two
// broadcasts can race on the same client's connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-h.lines:
			h.broadcast(ctx, line)
		}
	}
}

// broadcast fans line out to a snapshot of the currently connected clients,
// bounding concurrency with a worker pool rather than spawning one goroutine
// per client per line.
func (h *Hub) broadcast(ctx context.Context, line string) {
	h.mu.Lock()
	snapshot := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()
	if len(snapshot) == 0 {
		return
	}

	jobs := make(chan *wsClient, len(snapshot))
	for _, c := range snapshot {
		jobs <- c
	}
	close(jobs)

	worker.BlockingPool(ctx, h.workers, jobs, func(_ context.Context, c *wsClient) {
		select {
		case c.ch <- line:
		default:
			// Client backlog full: drop this line for it.
		}
	})
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// wsClient is one /ws/logs subscriber. Exactly one goroutine (writeLoop)
// ever calls conn.WriteMessage for a given client, so concurrent broadcasts
// and the connection's own close handshake never race on the socket.
type wsClient struct {
	conn *websocket.Conn
	ch   chan string
	done chan struct{}
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case line := <-c.ch:
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				close(c.done)
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop exists only to notice the peer closing the connection; the
// gateway never expects inbound messages on this stream.
func (c *wsClient) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.done:
			default:
				close(c.done)
			}
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Connections are routed purely by header-derived identity upstream of
	// this gateway; origin checking is left to the reverse proxy in front
	// of it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWSLogs upgrades the request to a websocket and streams log lines
// until the client disconnects (spec §6: "GET /ws/logs").
func (s *Surface) handleWSLogs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws/logs upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, ch: make(chan string, clientBacklog), done: make(chan struct{})}
	s.hub.register(c)

	go c.writeLoop()
	go c.readLoop()

	<-c.done
	s.hub.unregister(c)
	conn.Close()
}
