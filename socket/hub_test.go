package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"prophecyorb/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) OrbMessage {
	var msg OrbMessage
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &msg)
	require.NoError(t, err, "Failed to unmarshal OrbMessage JSON")
	return msg
}

func TestHubIntegration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hub := NewHub(db)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// Every joining viewer triggers a count query.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	// Viewer 1 joins and is greeted with the current total.
	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	require.NoError(t, err, "Viewer 1 failed to connect")
	defer conn1.Close()

	greeting := readMessage(t, conn1)
	assert.Equal(t, CountType, greeting.Type)
	assert.Equal(t, 3, greeting.TotalSubmissions)

	// Viewer 2 joins the orb as well.
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	require.NoError(t, err, "Viewer 2 failed to connect")
	defer conn2.Close()
	_ = readMessage(t, conn2)

	// A new prophecy lands; both viewers get the vision push.
	hub.Notify(4)

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		vision := readMessage(t, conn)
		assert.Equal(t, VisionType, vision.Type, "viewer %d", i+1)
		assert.Equal(t, 4, vision.TotalSubmissions, "viewer %d", i+1)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyNeverBlocksWithoutViewers(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hub := NewHub(db)
	// Hub deliberately not running: Notify must still return promptly.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Notify(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked with no hub consumer")
	}
}
