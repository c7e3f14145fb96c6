package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{}

// startStreamServer runs handler for each websocket connection and returns
// the ws:// URL to dial.
func startStreamServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func collectUpdates(t *testing.T, c *Channel) []Update {
	t.Helper()
	var updates []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-c.Updates():
			if !ok {
				return updates
			}
			updates = append(updates, u)
		case <-timeout:
			t.Fatal("timed out waiting for updates")
		}
	}
}

func TestChannel_ReducesEventStream(t *testing.T) {
	url := startStreamServer(t, func(conn *websocket.Conn) {
		events := []event{
			{MessageType: msgSessionBegins, SessionID: "remote-1"},
			{MessageType: msgPartialTranscript, Text: "he"},
			{MessageType: msgPartialTranscript, Text: "hello"},
			{MessageType: msgFinalTranscript, Text: "hello"},
			{MessageType: msgPartialTranscript, Text: "wor"},
			{MessageType: msgFinalTranscript, Text: "world"},
			{MessageType: msgPartialTranscript, Text: "fo"},
			{MessageType: msgSessionTerminated},
		}
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	})

	c := NewChannel(Config{URL: url, Token: "tok", SampleRate: 16000})
	require.NoError(t, c.Dial(context.Background()))
	assert.Equal(t, StateOpen, c.State())

	updates := collectUpdates(t, c)
	require.Len(t, updates, 6)

	transcripts := make([]string, len(updates))
	for i, u := range updates {
		transcripts[i] = u.Transcript
	}
	assert.Equal(t, []string{
		"he",
		"hello",
		"hello",
		"hello wor",
		"hello world",
		"hello world fo",
	}, transcripts)

	assert.True(t, updates[2].Final)
	assert.Equal(t, StateClosed, c.State())
	assert.NoError(t, c.Err())
	assert.Equal(t, "hello world fo", c.Transcript())
}

func TestChannel_DialCarriesTokenAndSampleRate(t *testing.T) {
	gotQuery := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery <- map[string]string{
			"token":       r.URL.Query().Get("token"),
			"sample_rate": r.URL.Query().Get("sample_rate"),
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	c := NewChannel(Config{
		URL:        "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:      "temp-xyz",
		SampleRate: 16000,
	})
	require.NoError(t, c.Dial(context.Background()))
	defer c.Close(context.Background())

	q := <-gotQuery
	assert.Equal(t, "temp-xyz", q["token"])
	assert.Equal(t, "16000", q["sample_rate"])
}

func TestChannel_SendForwardsFrames(t *testing.T) {
	gotFrame := make(chan []byte, 1)
	url := startStreamServer(t, func(conn *websocket.Conn) {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.BinaryMessage {
			gotFrame <- data
		}
		conn.WriteJSON(event{MessageType: msgSessionTerminated})
	})

	c := NewChannel(Config{URL: url, Token: "tok", SampleRate: 16000})
	require.NoError(t, c.Dial(context.Background()))

	frame := make([]byte, 3200)
	frame[0] = 0x7F
	require.NoError(t, c.Send(frame))
	assert.Equal(t, StateStreaming, c.State())

	select {
	case got := <-gotFrame:
		assert.Equal(t, frame, got)
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the frame")
	}

	<-c.Done()
	assert.Equal(t, StateClosed, c.State())
}

func TestChannel_SendBeforeDial(t *testing.T) {
	c := NewChannel(Config{URL: "ws://unused", Token: "tok", SampleRate: 16000})
	assert.Error(t, c.Send([]byte{0x00}))
}

func TestChannel_TransportErrorTerminatesSession(t *testing.T) {
	url := startStreamServer(t, func(conn *websocket.Conn) {
		// Drop the connection without a close handshake
		conn.WriteJSON(event{MessageType: msgPartialTranscript, Text: "he"})
		conn.UnderlyingConn().Close()
	})

	c := NewChannel(Config{URL: url, Token: "tok", SampleRate: 16000})
	require.NoError(t, c.Dial(context.Background()))

	collectUpdates(t, c)
	<-c.Done()

	assert.Equal(t, StateClosed, c.State(), "error cleanup still ends at closed")
	assert.ErrorIs(t, c.Err(), ErrTransport)
}

func TestChannel_UserClose(t *testing.T) {
	url := startStreamServer(t, func(conn *websocket.Conn) {
		// Keep reading until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := NewChannel(Config{URL: url, Token: "tok", SampleRate: 16000})
	require.NoError(t, c.Dial(context.Background()))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, StateClosed, c.State())
	assert.NoError(t, c.Err(), "user-initiated close is not a transport failure")

	// Close is idempotent
	assert.NoError(t, c.Close(context.Background()))
}

func TestChannel_DialFailure(t *testing.T) {
	c := NewChannel(Config{URL: "ws://127.0.0.1:1", Token: "tok", SampleRate: 16000})

	err := c.Dial(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, StateClosed, c.State())
}

func TestChannel_CloseBeforeDial(t *testing.T) {
	c := NewChannel(Config{URL: "ws://unused", Token: "tok", SampleRate: 16000})
	assert.NoError(t, c.Close(context.Background()))
	assert.Equal(t, StateClosed, c.State())
}
