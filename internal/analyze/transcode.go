// ABOUTME: Normalizes recorded audio to 16kHz mono 16-bit WAV before upload
// ABOUTME: Handles WAV and raw PCM inputs; everything else is rejected

package analyze

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	soxr "github.com/zaf/resample"

	"github.com/voxnote/voxnote/internal/capture"
)

// ErrConversion reports audio that could not be normalized for analysis.
var ErrConversion = errors.New("audio conversion failed")

// NormalizeWAV converts a recorded blob into a 16kHz mono 16-bit WAV ready
// for upload. Accepted inputs are "audio/wav" (16-bit PCM, one or two
// channels, any rate) and "audio/pcm" (raw little-endian 16-bit mono at the
// capture rate). Other MIME types fail with ErrConversion.
func NormalizeWAV(blob []byte, mimeType string) ([]byte, error) {
	switch mimeType {
	case "audio/pcm":
		if len(blob)%2 != 0 {
			return nil, fmt.Errorf("%w: raw PCM has odd byte length", ErrConversion)
		}
		samples := make([]int16, len(blob)/2)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(blob[i*2:]))
		}
		return EncodeWAV(samples, capture.SampleRate), nil

	case "audio/wav", "audio/wave", "audio/x-wav":
		samples, rate, channels, err := decodeWAV(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		if channels == 2 {
			samples = downmixStereo(samples)
		}
		if rate != capture.SampleRate {
			samples, err = resampleMono(samples, rate, capture.SampleRate)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConversion, err)
			}
		}
		return EncodeWAV(samples, capture.SampleRate), nil

	default:
		return nil, fmt.Errorf("%w: unsupported media type %q", ErrConversion, mimeType)
	}
}

// downmixStereo averages interleaved stereo pairs into mono.
func downmixStereo(interleaved []int16) []int16 {
	mono := make([]int16, len(interleaved)/2)
	for i := range mono {
		left := int(interleaved[i*2])
		right := int(interleaved[i*2+1])
		mono[i] = int16((left + right) / 2)
	}
	return mono
}

// resampleMono converts mono samples from inRate to outRate.
func resampleMono(samples []int16, inRate, outRate int) ([]int16, error) {
	var out bytes.Buffer
	resampler, err := soxr.New(&out, float64(inRate), float64(outRate), 1, soxr.I16, soxr.HighQ)
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}

	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	if _, err := resampler.Write(raw); err != nil {
		resampler.Close()
		return nil, fmt.Errorf("resampling audio: %w", err)
	}
	// Close flushes the tail of the filter
	if err := resampler.Close(); err != nil {
		return nil, fmt.Errorf("flushing resampler: %w", err)
	}

	raw = out.Bytes()
	result := make([]int16, len(raw)/2)
	for i := range result {
		result[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return result, nil
}
