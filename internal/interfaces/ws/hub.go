package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/usecases"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is the envelope clients send: authenticate or getSwaps.
type clientMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type serverMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn          *websocket.Conn
	writeMu       sync.Mutex
	authenticated bool
	userID        string
}

// write serializes frames onto the connection: the hub's broadcast loop and
// the client's read loop both reply on it, and gorilla/websocket allows only
// one concurrent writer per connection.
func (cl *client) write(payload []byte) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return cl.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains the set of active websocket clients and pushes quote
// lifecycle updates to them.
type Hub struct {
	quotes    *usecases.SwapQuoteUsecase
	clients   map[*client]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub(quotes *usecases.SwapQuoteUsecase) *Hub {
	return &Hub{
		quotes:    quotes,
		clients:   make(map[*client]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run fans broadcast messages out to every connected client. Blocked or
// broken clients are dropped.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for cl := range h.clients {
			if err := cl.write(message); err != nil {
				log.Printf("Websocket write error: %v", err)
				cl.conn.Close()
				delete(h.clients, cl)
			}
		}
		h.mutex.Unlock()
	}
}

// BroadcastSwapUpdate pushes a swapUpdate message to all clients. Satisfies
// the deposit monitor's notifier.
func (h *Hub) BroadcastSwapUpdate(quote *entities.SwapQuote) {
	payload, err := json.Marshal(serverMessage{Type: "swapUpdate", Data: quote})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Printf("Websocket broadcast buffer full, dropping swapUpdate for %s", quote.QuoteID)
	}
}

// Subscribe handles incoming websocket connections
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	cl := &client{conn: conn}
	h.mutex.Lock()
	h.clients[cl] = true
	total := len(h.clients)
	h.mutex.Unlock()
	log.Printf("New WebSocket client connected. Total clients: %d", total)

	go h.readLoop(cl)
}

func (h *Hub) readLoop(cl *client) {
	defer func() {
		h.mutex.Lock()
		delete(h.clients, cl)
		total := len(h.clients)
		h.mutex.Unlock()
		cl.conn.Close()
		log.Printf("WebSocket client disconnected. Total clients: %d", total)
	}()

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(cl, serverMessage{Type: "error", Data: "malformed message"})
			continue
		}
		h.handleMessage(cl, msg)
	}
}

func (h *Hub) handleMessage(cl *client, msg clientMessage) {
	switch msg.Type {
	case "authenticate":
		if msg.UserID == "" {
			h.send(cl, serverMessage{Type: "error", Data: "userId is required"})
			return
		}
		cl.authenticated = true
		cl.userID = msg.UserID
		h.send(cl, serverMessage{Type: "authenticated"})

	case "getSwaps":
		if !cl.authenticated {
			h.send(cl, serverMessage{Type: "error", Data: "authenticate first"})
			return
		}
		limit := msg.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		quotes, _, err := h.quotes.ListActive(ctx, limit, 0)
		cancel()
		if err != nil {
			h.send(cl, serverMessage{Type: "error", Data: "failed to list swaps"})
			return
		}
		h.send(cl, serverMessage{Type: "swaps", Data: quotes})

	default:
		h.send(cl, serverMessage{Type: "error", Data: "unknown message type"})
	}
}

func (h *Hub) send(cl *client, msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := cl.write(payload); err != nil {
		log.Printf("Websocket write error: %v", err)
	}
}
