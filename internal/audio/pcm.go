package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
)

// SampleRate is the only rate this pipeline natively decodes.
const SampleRate = 16000

// HeaderSize is the fixed WAV header length preceding the PCM payload.
const HeaderSize = 44

// DecodePCM16 converts a WAV byte stream into normalized float samples
// in [-1, 1]. The stream must carry a 44-byte header followed by 16-bit
// little-endian signed mono PCM; a header-only stream decodes to an
// empty sample sequence.
func DecodePCM16(data []byte) ([]float32, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", engine.ErrInvalidAudioFormat, len(data), HeaderSize)
	}

	payload := data[HeaderSize:]
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: odd PCM payload length %d", engine.ErrInvalidAudioFormat, len(payload))
	}

	samples := make([]float32, len(payload)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(payload[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

// Duration returns the playback length in seconds of a sample buffer.
func Duration(sampleCount int) float64 {
	return float64(sampleCount) / float64(SampleRate)
}
