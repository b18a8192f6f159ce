package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/comm"
)

// Hub tracks live websocket connections by socketId. Connections only
// listen; every jackpot event is fanned out to all of them.
type Hub struct {
	connMap sync.Map
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
}

func (h *Hub) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (h *Hub) HandleDisconnect(socketId string) {
	h.connMap.Delete(socketId)
}

// Broadcast sends the message to every connected client. Write failures
// drop the connection.
func (h *Hub) Broadcast(m *comm.WSMessage) {
	h.connMap.Range(func(key, value interface{}) bool {
		socketId := key.(string)
		conn := value.(*websocket.Conn)
		if err := conn.WriteJSON(m); err != nil {
			log.Warnf("dropping socket %s: %v", socketId, err)
			conn.Close()
			h.connMap.Delete(socketId)
		}
		return true
	})
}

// SocketMessage handles an incoming client message. The feed is one-way,
// so only the handshake type is meaningful.
func (h *Hub) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init":
		log.Infof("socket %s subscribed to jackpot feed", socketId)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}
