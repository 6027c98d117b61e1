// Package realtime fans the current product list out to connected viewers.
// The hub is the catalog's change notifier: every product mutation hands it
// the post-mutation list, and delivery to viewers is best effort. A slow
// client gets messages dropped, never a blocked mutation.
package realtime

import (
	"encoding/json"
	"sync"

	"tienda/internal/domain"
	applog "tienda/internal/log"
	"tienda/internal/repos"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type client struct {
	id   string
	send chan []byte
}

type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	products *repos.ProductRepo
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Bind attaches the catalog after construction; the repo needs the hub as
// its notifier and the hub needs the repo for socket commands.
func (h *Hub) Bind(products *repos.ProductRepo) { h.products = products }

// ProductsChanged implements repos.Notifier.
func (h *Hub) ProductsChanged(list []domain.Product) {
	msg, err := json.Marshal(fiber.Map{"event": "products:update", "payload": list})
	if err != nil {
		return
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			// Client is not keeping up; drop the frame.
		}
	}
}

func (h *Hub) push(cl *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl.id]; !ok {
		return
	}
	select {
	case cl.send <- msg:
	default:
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; ok {
		delete(h.clients, cl.id)
		close(cl.send)
	}
	h.mu.Unlock()
}

// Upgrade gates the websocket route.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one viewer connection: pushes the current list on connect,
// then relays catalog commands sent over the socket.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	cl := &client{id: uuid.NewString(), send: make(chan []byte, 16)}
	h.register(cl)
	defer h.unregister(cl)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range cl.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	if list, err := h.products.List(); err == nil {
		if msg, merr := json.Marshal(fiber.Map{"event": "products:update", "payload": list}); merr == nil {
			h.push(cl, msg)
		}
	} else {
		applog.Error(nil, "realtime.snapshot", err, map[string]any{"client": cl.id})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleCommand(cl, data)
	}
	h.unregister(cl)
	<-writerDone
}

type command struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ackError maps engine errors to the message acked to the client. Anything
// outside the taxonomy is a store failure: logged with detail, acked
// without it.
func ackError(event string, err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrDuplicateCode):
		return "the code field must be unique"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product not found"
	default:
		applog.Error(nil, "realtime.command", err, map[string]any{"event": event})
		return "internal error"
	}
}

func (h *Hub) handleCommand(cl *client, raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		h.ack(cl, "", false, fiber.Map{"error": "malformed message"})
		return
	}

	switch cmd.Event {
	case "product:create":
		var in domain.ProductInput
		if err := json.Unmarshal(cmd.Data, &in); err != nil {
			h.ack(cl, cmd.Event, false, fiber.Map{"error": "malformed product"})
			return
		}
		created, err := h.products.Create(in)
		if err != nil {
			h.ack(cl, cmd.Event, false, fiber.Map{"error": ackError(cmd.Event, err)})
			return
		}
		h.ack(cl, cmd.Event, true, fiber.Map{"payload": created})

	case "product:delete":
		var id int
		if err := json.Unmarshal(cmd.Data, &id); err != nil || id < 1 {
			h.ack(cl, cmd.Event, false, fiber.Map{"error": "malformed id"})
			return
		}
		ok, err := h.products.Delete(id)
		if err != nil {
			h.ack(cl, cmd.Event, false, fiber.Map{"error": ackError(cmd.Event, err)})
			return
		}
		h.ack(cl, cmd.Event, ok, fiber.Map{"id": id})

	default:
		applog.Warn(nil, "realtime.unknown_event", map[string]any{"event": cmd.Event})
	}
}

func (h *Hub) ack(cl *client, event string, ok bool, extra fiber.Map) {
	payload := fiber.Map{"event": "ack", "for": event, "ok": ok}
	for k, v := range extra {
		payload[k] = v
	}
	if msg, err := json.Marshal(payload); err == nil {
		h.push(cl, msg)
	}
}
