// ABOUTME: Streaming transcription channel over a websocket session
// ABOUTME: Explicit state machine with a single update stream, no auto-reconnect

package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrTransport is returned when the streaming connection fails. The session
// is terminated; there is no automatic retry, callers start a new Channel.
var ErrTransport = errors.New("transport failure")

// State is the lifecycle state of a streaming session.
type State int32

// Session lifecycle states. Error is reachable from connecting, open and
// streaming; both user- and server-initiated shutdown end at Closed.
const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateStreaming
	StateClosing
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Update is one step of the live transcript reduction.
type Update struct {
	Transcript string // full display transcript after this event
	Segment    string // text of the event that produced this update
	Final      bool   // whether Segment is a finalized segment
}

// Inbound message type discriminators used by the streaming service.
const (
	msgSessionBegins     = "SessionBegins"
	msgPartialTranscript = "PartialTranscript"
	msgFinalTranscript   = "FinalTranscript"
	msgSessionTerminated = "SessionTerminated"
)

// event is the wire shape of an inbound transcript message.
type event struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	SessionID   string `json:"session_id,omitempty"`
}

// terminateMessage asks the server to finish the session cleanly.
type terminateMessage struct {
	TerminateSession bool `json:"terminate_session"`
}

// Config holds the parameters for one streaming session.
type Config struct {
	// URL is the websocket endpoint of the streaming service
	URL string
	// Token is the temporary credential from the token service
	Token string
	// SampleRate of the outbound PCM frames
	SampleRate int
}

// Channel is one streaming transcription session. It forwards binary audio
// frames outbound and reduces inbound partial/final events into a live
// transcript exposed through Updates.
type Channel struct {
	cfg    Config
	id     string
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	err     error
	reducer Reducer

	updates chan Update
	done    chan struct{}
}

// updateBufferSize is the update channel buffer. A consumer that falls
// this far behind starts losing intermediate updates, never the stream.
const updateBufferSize = 64

// NewChannel creates an idle channel. Dial starts the session.
func NewChannel(cfg Config) *Channel {
	id := uuid.New().String()
	return &Channel{
		cfg:     cfg,
		id:      id,
		state:   StateIdle,
		updates: make(chan Update, updateBufferSize),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "transcribe", "session_id", id),
	}
}

// ID returns the local session identifier.
func (c *Channel) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the transport error that terminated the session, if any.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Updates returns the live transcript stream. The channel is closed when
// the session ends.
func (c *Channel) Updates() <-chan Update {
	return c.updates
}

// Done is closed when the session has fully shut down.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Dial opens the websocket session carrying the credential and starts the
// read loop. The channel moves idle -> connecting -> open.
func (c *Channel) Dial(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("dial from state %s", state)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		c.fail(fmt.Errorf("parsing stream URL: %w", err))
		return c.Err()
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(c.cfg.SampleRate))
	q.Set("token", c.cfg.Token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		c.fail(fmt.Errorf("dialing stream: %w", err))
		return c.Err()
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.logger.Info("streaming session open", "url", u.Host)
	go c.readLoop(conn)
	return nil
}

// Send forwards one binary audio frame. The first frame moves the session
// from open to streaming. Sending on a session that is not open fails.
func (c *Channel) Send(frame []byte) error {
	c.mu.Lock()
	if c.state != StateOpen && c.state != StateStreaming {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("send on %s channel", state)
	}
	c.state = StateStreaming
	conn := c.conn
	c.mu.Unlock()

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		// The read loop sees the broken transport too and runs the shared cleanup
		c.recordError(fmt.Errorf("writing frame: %w", err))
		_ = conn.Close()
		return c.Err()
	}
	return nil
}

// fail terminates a session that never got a read loop (dial failures).
func (c *Channel) fail(err error) {
	c.recordError(err)
	c.shutdown()
}

// Close stops sending, asks the server to terminate, closes the transport
// and waits for the read loop to finish. The session always ends at Closed
// whether the shutdown was user- or server-initiated.
func (c *Channel) Close(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return nil
	case StateIdle:
		c.state = StateClosed
		close(c.updates)
		close(c.done)
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosing
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		// Best effort: the server may already be gone
		_ = conn.WriteJSON(terminateMessage{TerminateSession: true})
		_ = conn.Close()
	}

	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// readLoop consumes inbound events until the transport ends. Server close
// and transport error route through the same cleanup path.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer c.shutdown()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closing := c.state == StateClosing
			c.mu.Unlock()

			if closing || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			c.recordError(fmt.Errorf("reading stream: %w", err))
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("skipping malformed event", "error", err)
			continue
		}

		switch ev.MessageType {
		case msgSessionBegins:
			c.logger.Debug("session begins", "remote_session", ev.SessionID)
		case msgSessionTerminated:
			c.logger.Debug("session terminated by server")
			return
		case msgPartialTranscript:
			c.mu.Lock()
			c.reducer.Partial(ev.Text)
			update := Update{Transcript: c.reducer.Transcript(), Segment: ev.Text}
			c.mu.Unlock()
			c.emit(update)
		case msgFinalTranscript:
			c.mu.Lock()
			c.reducer.Final(ev.Text)
			update := Update{Transcript: c.reducer.Transcript(), Segment: ev.Text, Final: true}
			c.mu.Unlock()
			c.emit(update)
		default:
			c.logger.Debug("ignoring event", "message_type", ev.MessageType)
		}
	}
}

// emit delivers an update without ever blocking the read loop.
func (c *Channel) emit(u Update) {
	select {
	case c.updates <- u:
	default:
		c.logger.Warn("dropping transcript update, consumer too slow")
	}
}

// recordError marks the session failed with a transport error.
func (c *Channel) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	if c.err == nil {
		c.err = fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.state = StateError
	c.logger.Error("streaming session failed", "error", err)
}

// shutdown runs exactly once when the read loop exits and moves the
// session to Closed.
func (c *Channel) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.state != StateClosed {
		c.state = StateClosed
		close(c.updates)
		close(c.done)
	}
	c.logger.Info("streaming session closed", "transcript_len", len(c.reducer.Transcript()))
}

// Transcript returns the current reduced transcript.
func (c *Channel) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reducer.Transcript()
}
