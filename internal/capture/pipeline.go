// ABOUTME: Fixed-duration audio framing pipeline for low-latency streaming
// ABOUTME: Buffers 16kHz s16le mono samples and emits exact 100ms frames

package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Audio format expected by the downstream transcription service.
const (
	SampleRate      = 16000
	SamplesPerFrame = SampleRate / 10 // 100ms
	BytesPerSample  = 2               // 16-bit signed PCM
	FrameBytes      = SamplesPerFrame * BytesPerSample
)

// Capture errors
var (
	// ErrDevice is returned when the audio source cannot be opened or read
	ErrDevice = errors.New("audio device unavailable")
	// ErrPermission is returned when access to the audio source is denied
	ErrPermission = errors.New("audio permission denied")
)

// FrameFunc receives one frame of exactly FrameBytes little-endian PCM.
// The slice is only valid for the duration of the call.
type FrameFunc func(frame []byte)

// Pipeline accumulates raw samples and emits fixed 100ms frames. Samples
// left over after the last full frame are carried into the next emission;
// Stop discards any carried remainder rather than flushing it.
type Pipeline struct {
	mu      sync.Mutex
	onFrame FrameFunc
	buf     []int16
	frame   [FrameBytes]byte
	stopped bool
	logger  *slog.Logger
}

// NewPipeline creates a pipeline delivering frames to onFrame.
func NewPipeline(onFrame FrameFunc) *Pipeline {
	return &Pipeline{
		onFrame: onFrame,
		buf:     make([]int16, 0, 2*SamplesPerFrame),
		logger:  slog.Default().With("component", "capture"),
	}
}

// Push appends samples and emits a frame for every full 100ms of buffered
// audio. Pushing after Stop is a no-op.
func (p *Pipeline) Push(samples []int16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	p.buf = append(p.buf, samples...)
	for len(p.buf) >= SamplesPerFrame {
		for i, s := range p.buf[:SamplesPerFrame] {
			binary.LittleEndian.PutUint16(p.frame[i*2:], uint16(s))
		}
		p.buf = p.buf[SamplesPerFrame:]
		p.onFrame(p.frame[:])
	}
}

// Buffered returns the number of samples waiting for the next frame.
func (p *Pipeline) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Stop discards the buffered remainder and rejects further pushes. The
// final undersized slice is intentionally not flushed; delivery is
// best-effort up to the last full frame.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if n := len(p.buf); n > 0 {
		p.logger.Debug("discarding buffered remainder", "samples", n)
	}
	p.buf = nil
	p.stopped = true
}

// Source produces raw 16kHz mono samples. ReadSamples returns io.EOF when
// the source is exhausted.
type Source interface {
	ReadSamples(ctx context.Context) ([]int16, error)
	Close() error
}

// Run pulls samples from src through the pipeline until the source is
// exhausted or ctx is cancelled. The source is always closed and the
// pipeline stopped on return, releasing the underlying input.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	defer p.Stop()
	defer src.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		samples, err := src.ReadSamples(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading samples: %w", err)
		}
		p.Push(samples)
	}
}
