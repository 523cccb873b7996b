package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries feed messages between instances.
const ClusterChannel = "ticker:resolutions"

// Hub fans resolution events out to every connected feed client. With redis
// configured, events published on one instance reach clients of all of them.
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Tags our own redis messages so they are not delivered twice.
	instanceID string

	logger logger.ILogger
}

type feedMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Market  string          `json:"market"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run relays messages from other instances until ctx ends. Without redis it
// only waits.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliver(payload.Market, payload.Message)
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": c.ID, "market": c.Market, "clients": n})
}

// Unregister is idempotent; the client's Send channel is closed once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers event to local clients and, with redis, to the rest of
// the cluster. It satisfies the consumer's outbound bus interface.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	data, err := json.Marshal(feedMessage{Type: event.EventType(), Data: payload})
	if err != nil {
		return err
	}
	market, _ := payload["market"].(string)

	h.deliver(market, data)

	if h.rdb == nil {
		return nil
	}
	msg, err := json.Marshal(clusterMessage{Origin: h.instanceID, Market: market, Message: data})
	if err != nil {
		return err
	}
	if err := h.rdb.Publish(ctx, ClusterChannel, msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", ClusterChannel, err)
	}
	return nil
}

// deliver never blocks; a client whose buffer is full is dropped.
func (h *Hub) deliver(market string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		if c.Market != "" && c.Market != market {
			continue
		}
		select {
		case c.Send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"client_id": c.ID})
		h.Unregister(c)
	}
}
