package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// MonitorEvent is pushed to connected admin dashboards whenever a student
// session changes state.
type MonitorEvent struct {
	Type          string    `json:"type"` // exam_started, exam_submitted, session_expired, exam_abandoned
	UserID        uuid.UUID `json:"user_id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	SubjectID     uuid.UUID `json:"subject_id"`
	ExamType      string    `json:"exam_type"`
	Score         *int      `json:"score,omitempty"`
	Total         *int      `json:"total,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type Client struct {
	AdminID uuid.UUID
	Conn    *websocket.Conn
}

var clients = make(map[*websocket.Conn]uuid.UUID)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan MonitorEvent, 64)

// RunHub fans monitor events out to every connected admin. A write failure
// drops that connection; students never connect here.
func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Monitor client registered: %s", client.AdminID)
			clientsMu.Lock()
			clients[client.Conn] = client.AdminID
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Monitor client unregistered: %s", client.AdminID)
			clientsMu.Lock()
			delete(clients, client.Conn)
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			var dead []*websocket.Conn
			for conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending monitor event to admin: %v", err)
					conn.Close()
					dead = append(dead, conn)
				}
			}
			clientsMu.RUnlock()

			if len(dead) > 0 {
				clientsMu.Lock()
				for _, conn := range dead {
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Publish broadcasts without blocking the caller when no hub reader is
// draining the channel yet.
func Publish(event MonitorEvent) {
	event.Timestamp = time.Now()
	select {
	case Broadcast <- event:
	default:
		log.Println("Monitor event dropped: broadcast channel full")
	}
}
