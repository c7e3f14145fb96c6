// ABOUTME: PCM sample sources for the capture pipeline
// ABOUTME: Maps open failures to device/permission errors with no dangling handles

package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// readChunk is the byte size of one source read (20ms at 16kHz s16le).
const readChunk = SampleRate / 50 * BytesPerSample

// PCMSource reads raw little-endian 16-bit mono PCM from an io.Reader.
type PCMSource struct {
	r    io.Reader
	c    io.Closer
	buf  [readChunk]byte
	odd  bool
	high byte
}

// NewPCMSource wraps a reader of raw s16le samples. If r also implements
// io.Closer it is closed by Close.
func NewPCMSource(r io.Reader) *PCMSource {
	src := &PCMSource{r: r}
	if c, ok := r.(io.Closer); ok {
		src.c = c
	}
	return src
}

// OpenPCMFile opens a raw s16le PCM file as a capture source. Permission
// failures surface as ErrPermission, anything else as ErrDevice; on failure
// no handle is left open.
func OpenPCMFile(path string) (*PCMSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermission, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDevice, err)
	}
	return NewPCMSource(f), nil
}

// ReadSamples reads the next chunk of samples. An odd trailing byte is
// carried into the next read so no sample is ever split across chunks.
func (s *PCMSource) ReadSamples(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := 0
	if s.odd {
		s.buf[0] = s.high
		start = 1
	}

	n, err := s.r.Read(s.buf[start:])
	if n == 0 && err != nil {
		if err == io.EOF && s.odd {
			// A lone trailing byte cannot form a sample; drop it.
			s.odd = false
		}
		return nil, err
	}

	total := start + n
	s.odd = total%2 == 1
	if s.odd {
		total--
		s.high = s.buf[total]
	}

	samples := make([]int16, total/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(s.buf[i*2:]))
	}
	return samples, nil
}

// Close releases the underlying reader if it is closable.
func (s *PCMSource) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

var _ Source = (*PCMSource)(nil)
