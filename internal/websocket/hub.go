package websocket

import (
	"log/slog"
	"sync"

	"github.com/snake-leaderboard/internal/domain"
)

// Hub tracks connected clients and their channel subscriptions. All
// membership changes go through Run; the maps are only read elsewhere.
type Hub struct {
	clients     map[*Client]struct{}
	subscribers map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	changes    chan subscriptionChange
	broadcast  chan Message

	mu     sync.RWMutex
	logger *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

type subscriptionChange struct {
	client     *Client
	channel    string
	subscribed bool
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		subscribers: make(map[string]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		changes:     make(chan subscriptionChange, 64),
		broadcast:   make(chan Message, 256),
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Run processes registrations, subscriptions and broadcasts until Stop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.done:
			h.logger.Info("WebSocket hub stopping")
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case change := <-h.changes:
			h.apply(change)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client registered", "client_id", c.id)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for channel := range h.subscribers {
		h.dropLocked(c, channel)
	}
	close(c.send)
	h.logger.Debug("client unregistered", "client_id", c.id)
}

func (h *Hub) apply(change subscriptionChange) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// The client may have disconnected while the change was queued.
	if _, ok := h.clients[change.client]; !ok {
		return
	}
	if !change.subscribed {
		h.dropLocked(change.client, change.channel)
		return
	}
	set, ok := h.subscribers[change.channel]
	if !ok {
		set = make(map[*Client]struct{})
		h.subscribers[change.channel] = set
	}
	set[change.client] = struct{}{}
}

func (h *Hub) dropLocked(c *Client, channel string) {
	set, ok := h.subscribers[channel]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.subscribers, channel)
	}
}

// fanOut delivers msg to the subscribers of its channel, or to every client
// when the message has no channel. Slow clients miss the message.
func (h *Hub) fanOut(msg Message) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if msg.Channel != "" {
		targets = h.subscribers[msg.Channel]
	}
	for c := range targets {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", c.id)
		}
	}
}

// BroadcastLeaderboard pushes a snapshot to leaderboard subscribers
func (h *Hub) BroadcastLeaderboard(entries []domain.LeaderboardEntry) {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	msg := Message{
		Type:    MessageTypeLeaderboardUpdate,
		Channel: ChannelLeaderboard,
		Data:    LeaderboardUpdate{Entries: entries},
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping leaderboard update")
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client and all of its subscriptions
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Subscribe adds a client to channel
func (h *Hub) Subscribe(c *Client, channel string) {
	h.queue(subscriptionChange{client: c, channel: channel, subscribed: true})
}

// Unsubscribe removes a client from channel
func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.queue(subscriptionChange{client: c, channel: channel})
}

func (h *Hub) queue(change subscriptionChange) {
	select {
	case h.changes <- change:
	case <-h.done:
	}
}

// SubscriberCount returns the number of subscribers of channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// TotalConnections returns the number of connected clients
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
