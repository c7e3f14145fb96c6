// ABOUTME: Opus packet source: decodes 48kHz mono Opus and resamples to 16kHz
// ABOUTME: Feeds the framing pipeline from compressed capture inputs

package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	soxr "github.com/zaf/resample"
	opus "gopkg.in/hraban/opus.v2"
)

const opusRate = 48000

// maxOpusFrame is the largest decodable Opus frame (120ms at 48kHz mono).
const maxOpusFrame = opusRate * 120 / 1000

// PacketReader yields one compressed Opus packet per call, io.EOF at end.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// OpusSource decodes Opus packets at 48kHz mono and resamples the PCM down
// to the pipeline rate.
type OpusSource struct {
	packets      PacketReader
	decoder      *opus.Decoder
	resampler    *soxr.Resampler
	resamplerBuf *bytes.Buffer
	pcm          []int16
	inputBytes   []byte
}

// NewOpusSource creates a source reading compressed packets from packets.
// On construction failure nothing is left partially open.
func NewOpusSource(packets PacketReader) (*OpusSource, error) {
	decoder, err := opus.NewDecoder(opusRate, 1)
	if err != nil {
		return nil, fmt.Errorf("creating opus decoder: %w", err)
	}

	// The resampler writes into the same buffer we read back from
	resamplerBuf := &bytes.Buffer{}
	resampler, err := soxr.New(resamplerBuf, opusRate, SampleRate, 1, soxr.I16, soxr.HighQ)
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}

	return &OpusSource{
		packets:      packets,
		decoder:      decoder,
		resampler:    resampler,
		resamplerBuf: resamplerBuf,
		pcm:          make([]int16, maxOpusFrame),
		inputBytes:   make([]byte, 0, maxOpusFrame*BytesPerSample),
	}, nil
}

// ReadSamples decodes the next packet and returns its samples at the
// pipeline rate. The resampler may buffer internally, so a packet can yield
// an empty slice; callers should simply read again.
func (s *OpusSource) ReadSamples(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packet, err := s.packets.ReadPacket()
	if err != nil {
		return nil, err
	}
	if len(packet) == 0 {
		return nil, nil // DTX packet
	}

	n, err := s.decoder.Decode(packet, s.pcm)
	if err != nil {
		return nil, fmt.Errorf("decoding opus packet: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return s.resample(s.pcm[:n])
}

func (s *OpusSource) resample(samples []int16) ([]int16, error) {
	inputSize := len(samples) * BytesPerSample
	if cap(s.inputBytes) < inputSize {
		s.inputBytes = make([]byte, inputSize)
	}
	input := s.inputBytes[:inputSize]
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(input[i*2:], uint16(sample))
	}

	s.resamplerBuf.Reset()
	if _, err := s.resampler.Write(input); err != nil {
		return nil, fmt.Errorf("resampling: %w", err)
	}

	output := s.resamplerBuf.Bytes()
	out := make([]int16, len(output)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(output[i*2:]))
	}
	return out, nil
}

// Close flushes and releases the resampler.
func (s *OpusSource) Close() error {
	return s.resampler.Close()
}

var _ Source = (*OpusSource)(nil)
