package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solutions-systems/bolas-locas/internal/comm"
)

// dialTestClient upgrades one client into the hub under a known socket id.
func dialTestClient(t *testing.T, hub *Hub, socketId string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.StoreConnection(socketId, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool {
		_, ok := hub.GetConnection(socketId)
		return ok
	}, time.Second, 10*time.Millisecond)

	return client
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	first := dialTestClient(t, hub, "s1")
	second := dialTestClient(t, hub, "s2")

	data, err := json.Marshal(comm.JackpotEvent{BoardID: 4, AccumUnits: 5})
	require.NoError(t, err)
	hub.Broadcast(&comm.WSMessage{Type: "jackpot-update", Data: data})

	for _, client := range []*websocket.Conn{first, second} {
		client.SetReadDeadline(time.Now().Add(time.Second))
		var msg comm.WSMessage
		require.NoError(t, client.ReadJSON(&msg))
		assert.Equal(t, "jackpot-update", msg.Type)

		var event comm.JackpotEvent
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, 4, event.BoardID)
		assert.Equal(t, 5, event.AccumUnits)
	}
}

func TestHubDisconnectRemovesConnection(t *testing.T) {
	hub := NewHub()
	dialTestClient(t, hub, "s1")

	hub.HandleDisconnect("s1")

	_, ok := hub.GetConnection("s1")
	assert.False(t, ok)
}

// The broker turns a raw subject message into a jackpot-update broadcast.
func TestBrokerFansOutJackpotEvents(t *testing.T) {
	hub := NewHub()
	client := dialTestClient(t, hub, "s1")
	broker := NewBroker(nil, hub)

	event := comm.JackpotEvent{
		BoardID:     4,
		AccumUnits:  8,
		AccumAmount: decimal.NewFromInt(8000),
		WinnerPrize: decimal.NewFromInt(2720),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	broker.handleMessage(&nats.Msg{Subject: comm.SubjectJackpotEvents, Data: payload})

	client.SetReadDeadline(time.Now().Add(time.Second))
	var msg comm.WSMessage
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "jackpot-update", msg.Type)

	var got comm.JackpotEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, 4, got.BoardID)
	assert.True(t, got.WinnerPrize.Equal(decimal.NewFromInt(2720)))
}

// Malformed payloads are dropped without reaching the clients.
func TestBrokerIgnoresMalformedPayload(t *testing.T) {
	hub := NewHub()
	client := dialTestClient(t, hub, "s1")
	broker := NewBroker(nil, hub)

	broker.handleMessage(&nats.Msg{Subject: comm.SubjectJackpotEvents, Data: []byte("{not json")})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg comm.WSMessage
	err := client.ReadJSON(&msg)
	assert.Error(t, err)
}
