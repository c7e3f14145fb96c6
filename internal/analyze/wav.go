// ABOUTME: Minimal RIFF/WAV encode and decode for 16-bit PCM
// ABOUTME: The uncompressed intermediate format for analysis uploads

package analyze

import (
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAV container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	const (
		numChannels    = 1
		bitsPerSample  = 16
		bytesPerSample = bitsPerSample / 8
	)
	blockAlign := numChannels * bytesPerSample
	dataLen := len(samples) * blockAlign

	buf := make([]byte, wavHeaderSize+dataLen)
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16) // fmt chunk length
	binary.LittleEndian.PutUint16(buf[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:], numChannels)
	binary.LittleEndian.PutUint32(buf[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(sampleRate*blockAlign)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:], bitsPerSample)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(s))
	}
	return buf
}

// decodeWAV parses a 16-bit PCM WAV file and returns the interleaved
// samples, sample rate and channel count.
func decodeWAV(data []byte) (samples []int16, sampleRate, channels int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var fmtSeen bool
	var bitsPerSample int
	var pcm []byte

	// Walk the chunk list; only fmt and data matter
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, 0, 0, fmt.Errorf("truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, 0, fmt.Errorf("fmt chunk too short")
			}
			audioFormat := int(binary.LittleEndian.Uint16(data[body:]))
			if audioFormat != 1 {
				return nil, 0, 0, fmt.Errorf("unsupported audio format %d (want PCM)", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14:]))
			fmtSeen = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned
		off = body + size + size%2
	}

	if !fmtSeen {
		return nil, 0, 0, fmt.Errorf("missing fmt chunk")
	}
	if pcm == nil {
		return nil, 0, 0, fmt.Errorf("missing data chunk")
	}
	if bitsPerSample != 16 {
		return nil, 0, 0, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
	}
	if channels < 1 || channels > 2 {
		return nil, 0, 0, fmt.Errorf("unsupported channel count %d", channels)
	}

	samples = make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples, sampleRate, channels, nil
}
