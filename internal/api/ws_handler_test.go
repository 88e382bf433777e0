package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleboard/pkg/logger"
)

func dialWS(t *testing.T, rows int, interval time.Duration) *websocket.Conn {
	t.Helper()

	h := NewWSHandler(apiTestTable(rows), interval, logger.Get())
	server := httptest.NewServer(http.HandlerFunc(h.HandleChart))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chart"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWS_InitialFrame(t *testing.T) {
	conn := dialWS(t, 30, 50*time.Millisecond)

	msg := readMessage(t, conn)
	assert.Equal(t, "frame", msg.Type)
	require.NotNil(t, msg.Frame)
	assert.Equal(t, 10, msg.Frame.Index)
}

func TestWS_StepAdvancesOneFrame(t *testing.T) {
	conn := dialWS(t, 30, 50*time.Millisecond)
	readMessage(t, conn) // initial frame

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "step"}))

	frame := readMessage(t, conn)
	require.Equal(t, "frame", frame.Type)
	assert.Equal(t, 11, frame.Frame.Index)

	state := readMessage(t, conn)
	require.Equal(t, "state", state.Type)
	assert.Equal(t, "idle", state.State)
	assert.Equal(t, 11, state.Cursor)
}

func TestWS_SeekJumpsCursor(t *testing.T) {
	conn := dialWS(t, 30, 50*time.Millisecond)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "seek", Index: 20}))

	frame := readMessage(t, conn)
	require.Equal(t, "frame", frame.Type)
	assert.Equal(t, 20, frame.Frame.Index)

	state := readMessage(t, conn)
	assert.Equal(t, 20, state.Cursor)
}

func TestWS_SeekOutOfRange(t *testing.T) {
	conn := dialWS(t, 30, 50*time.Millisecond)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "seek", Index: 5}))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.NotEmpty(t, msg.Error)
}

func TestWS_UnknownAction(t *testing.T) {
	conn := dialWS(t, 30, 50*time.Millisecond)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "rewind"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "rewind")
}

func TestWS_StartStreamsToCompletion(t *testing.T) {
	conn := dialWS(t, 13, 2*time.Millisecond)
	readMessage(t, conn) // initial frame at index 10

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "start"}))

	var lastFrame int
	for {
		msg := readMessage(t, conn)
		if msg.Type == "frame" {
			lastFrame = msg.Frame.Index
			if lastFrame == 13 {
				break
			}
		}
	}
	assert.Equal(t, 13, lastFrame)
}
