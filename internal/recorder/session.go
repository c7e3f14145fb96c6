// ABOUTME: Recording session orchestration: capture, live transcription, storage
// ABOUTME: Owns the frame path from audio source to stream and to the saved blob

package recorder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxnote/voxnote/internal/analyze"
	"github.com/voxnote/voxnote/internal/capture"
	"github.com/voxnote/voxnote/internal/naming"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/transcribe"
)

// ErrNotRecording is returned by Stop when the session never started.
var ErrNotRecording = errors.New("session is not recording")

// blobMIMEType is the container every saved recording uses.
const blobMIMEType = "audio/wav"

// streamChannel is the transcription session surface the recorder drives.
// *transcribe.Channel satisfies it; tests substitute a fake.
type streamChannel interface {
	Dial(ctx context.Context) error
	Send(frame []byte) error
	Close(ctx context.Context) error
	Updates() <-chan transcribe.Update
	Transcript() string
	Err() error
}

var _ streamChannel = (*transcribe.Channel)(nil)

// Config holds the collaborators a recording session needs.
type Config struct {
	Store store.MediaStore

	// TokenEndpoint issues temporary streaming credentials
	TokenEndpoint string
	// StreamURL is the websocket endpoint for live transcription
	StreamURL string

	// HTTPClient is used for the token fetch; http.DefaultClient when nil
	HTTPClient *http.Client

	// Broadcaster receives live transcript updates when non-nil
	Broadcaster *transcribe.Broadcaster
}

// Session records one take: it frames captured audio, streams the frames for
// live transcription, and on Stop persists the recording with its transcript.
type Session struct {
	id     string
	cfg    Config
	logger *slog.Logger

	// newChannel is swapped out by tests
	newChannel func(cfg transcribe.Config) streamChannel
	now        func() time.Time

	mu        sync.Mutex
	recording bool
	startedAt time.Time
	pcm       bytes.Buffer

	channel    streamChannel
	pipeline   *capture.Pipeline
	cancelRun  context.CancelFunc
	captureErr error
	runDone    chan struct{}
	relayDone  chan struct{}
}

// NewSession creates a session from cfg.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.TokenEndpoint == "" {
		return nil, fmt.Errorf("token endpoint is required")
	}
	if cfg.StreamURL == "" {
		return nil, fmt.Errorf("stream URL is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		cfg:    cfg,
		logger: slog.Default().With("component", "recorder", "session_id", id),
		newChannel: func(chCfg transcribe.Config) streamChannel {
			return transcribe.NewChannel(chCfg)
		},
		now: time.Now,
	}, nil
}

// ID returns the session identifier used for broadcast subscriptions.
func (s *Session) ID() string { return s.id }

// Start fetches a streaming credential, opens the transcription channel and
// begins draining src. It returns once capture is running; audio then flows
// until Stop or a source failure.
func (s *Session) Start(ctx context.Context, src capture.Source) error {
	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return fmt.Errorf("session already recording")
	}
	s.mu.Unlock()

	token, err := transcribe.FetchToken(ctx, s.cfg.HTTPClient, s.cfg.TokenEndpoint)
	if err != nil {
		src.Close()
		return fmt.Errorf("fetching stream token: %w", err)
	}

	channel := s.newChannel(transcribe.Config{
		URL:        s.cfg.StreamURL,
		Token:      token,
		SampleRate: capture.SampleRate,
	})
	if err := channel.Dial(ctx); err != nil {
		src.Close()
		return fmt.Errorf("opening transcription channel: %w", err)
	}

	pipeline := capture.NewPipeline(s.onFrame)
	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.recording = true
	s.startedAt = s.now()
	s.pcm.Reset()
	s.channel = channel
	s.pipeline = pipeline
	s.cancelRun = cancel
	s.captureErr = nil
	s.runDone = make(chan struct{})
	s.relayDone = make(chan struct{})
	s.mu.Unlock()

	go s.relayUpdates(channel, s.relayDone)
	go func() {
		err := pipeline.Run(runCtx, src)
		s.mu.Lock()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.captureErr = err
		}
		close(s.runDone)
		s.mu.Unlock()
	}()

	s.logger.Info("recording started")
	return nil
}

// onFrame keeps a copy of every emitted frame and forwards it to the stream.
// A stream failure does not stop capture; the transcript is simply cut short.
func (s *Session) onFrame(frame []byte) {
	s.mu.Lock()
	s.pcm.Write(frame)
	channel := s.channel
	s.mu.Unlock()

	if channel == nil {
		return
	}
	if err := channel.Send(frame); err != nil {
		s.logger.Warn("dropping frame, stream unavailable", "error", err)
	}
}

// relayUpdates forwards live transcript updates to the broadcaster until the
// channel closes.
func (s *Session) relayUpdates(channel streamChannel, done chan struct{}) {
	defer close(done)
	for update := range channel.Updates() {
		if s.cfg.Broadcaster != nil {
			s.cfg.Broadcaster.Publish(s.id, update)
		}
	}
}

// Transcript returns the live transcript accumulated so far.
func (s *Session) Transcript() string {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()
	if channel == nil {
		return ""
	}
	return channel.Transcript()
}

// Stop ends capture, closes the transcription channel and persists the
// recording under name with the given tags. The stored blob is a 16kHz mono
// WAV of every full frame captured; a trailing partial frame is discarded.
func (s *Session) Stop(ctx context.Context, name string, tags []store.Tag) (*store.Media, error) {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return nil, ErrNotRecording
	}
	s.recording = false
	channel := s.channel
	cancel := s.cancelRun
	runDone := s.runDone
	relayDone := s.relayDone
	startedAt := s.startedAt
	s.mu.Unlock()

	cancel()
	<-runDone

	if err := channel.Close(ctx); err != nil {
		s.logger.Warn("transcription channel close failed", "error", err)
	}
	<-relayDone

	s.mu.Lock()
	captureErr := s.captureErr
	pcm := s.pcm.Bytes()
	s.channel = nil
	s.mu.Unlock()

	if captureErr != nil {
		return nil, fmt.Errorf("capture failed: %w", captureErr)
	}

	transcript := channel.Transcript()
	if err := channel.Err(); err != nil {
		s.logger.Warn("transcription ended early, keeping partial transcript", "error", err)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	media := &store.Media{
		Blob:       analyze.EncodeWAV(samples, capture.SampleRate),
		Type:       store.MediaTypeAudio,
		Name:       naming.Format(startedAt, name) + "." + naming.Extension(blobMIMEType),
		CreatedAt:  startedAt,
		Transcript: transcript,
		Tags:       tags,
	}

	id, err := s.cfg.Store.CreateMedia(ctx, media)
	if err != nil {
		return nil, fmt.Errorf("saving recording: %w", err)
	}
	media.ID = id

	s.logger.Info("recording saved",
		"media_id", id,
		"name", media.Name,
		"duration", s.now().Sub(startedAt).Round(time.Millisecond),
		"transcript_len", len(transcript))
	return media, nil
}
