package socket

import (
	"database/sql"
	"encoding/json"
	"sync"

	"prophecyorb/pkg/logger"
)

const (
	CountType  = "COUNT"  // Current total, sent when a viewer joins.
	VisionType = "VISION" // A new prophecy arrived; payload is the new total.
)

type OrbMessage struct {
	Type             string `json:"type"`
	TotalSubmissions int    `json:"total_submissions"`
}

// Hub tracks every browser watching the orb page and pushes submission-count
// updates to them, so open orb pages reflect new prophecies without polling.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan OrbMessage
	db         *sql.DB
	mu         sync.Mutex
}

func NewHub(db *sql.DB) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan OrbMessage, 16),
		db:         db,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()

			// Greet the new viewer with the current total so the page
			// renders a count immediately.
			var total int
			if err := h.db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&total); err != nil {
				logger.Sugar.Errorf("Failed to load submission count for new viewer: %v", err)
				total = 0
			}
			payload, _ := json.Marshal(OrbMessage{Type: CountType, TotalSubmissions: total})
			client.Send <- payload

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling orb message: %v", err)
				continue
			}

			// Snapshot the recipients so no I/O happens under the lock.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Clients))
			for client := range h.Clients {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// A full send buffer means the viewer is lagging;
					// drop the connection rather than block the hub.
					// Removal happens inline: the run loop cannot receive
					// on h.Unregister while it is sending.
					logger.Sugar.Warn("Viewer send buffer full, dropping connection")
					h.mu.Lock()
					if _, ok := h.Clients[client]; ok {
						delete(h.Clients, client)
						close(client.Send)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}

// Notify announces a new prophecy to every connected viewer. It never
// blocks the caller: if the hub is saturated the notification is dropped.
func (h *Hub) Notify(total int) {
	select {
	case h.Broadcast <- OrbMessage{Type: VisionType, TotalSubmissions: total}:
	default:
		logger.Sugar.Warn("Orb hub saturated, dropping vision notification")
	}
}
