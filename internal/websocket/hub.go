package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans pub/sub messages (async anomaly results) out to each account's
// live websocket connections.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, _ := claims["account_id"].(string)
	if accountID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(accountID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(accountID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[accountID] = append(h.connections[accountID], conn)

	// Start pub/sub subscription if this is the first connection for this account
	if len(h.connections[accountID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[accountID] = cancel
		go h.subscribeToPubSub(ctx, accountID)
	}
}

func (h *Hub) unregisterConnection(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.connections[accountID]
	for i, c := range conns {
		if c == conn {
			h.connections[accountID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	conn.Close()

	if len(h.connections[accountID]) == 0 {
		delete(h.connections, accountID)
		if cancel, ok := h.cancelFuncs[accountID]; ok {
			cancel()
			delete(h.cancelFuncs, accountID)
		}
	}
}

func (h *Hub) subscribeToPubSub(ctx context.Context, accountID string) {
	pubsub := h.redisClient.Subscribe(ctx, fmt.Sprintf("user_updates:%s", accountID))
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
			h.broadcast(accountID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(accountID string, payload []byte) {
	h.mu.RLock()
	conns := append([]*websocket.Conn(nil), h.connections[accountID]...)
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("WebSocket write to %s failed: %v", accountID, err)
		}
	}
}
