package server

import (
	"net/http"
	"time"

	"astock-collector/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FacadeServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

		case update := <-s.broadcast:
			s.stateMutex.Lock()
			s.lastUpdate = update.Timestamp
			for client := range s.clients {
				select {
				case client.send <- update:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

// Broadcast queues a refreshed quote set for all connected clients.
func (s *FacadeServer) Broadcast(quotes []models.MRealtimeQuote) {
	update := &models.MQuoteUpdate{
		Type:      "UPDATE",
		Quotes:    quotes,
		Timestamp: time.Now().Unix(),
	}

	select {
	case s.broadcast <- update:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update of %d quotes", len(quotes))
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FacadeServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MQuoteUpdate, 64),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
