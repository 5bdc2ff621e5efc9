package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
)

func wavBytes(samples ...int16) []byte {
	data := make([]byte, HeaderSize+len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[HeaderSize+i*2:], uint16(s))
	}
	return data
}

func TestDecodePCM16(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []float32
		wantErr bool
	}{
		{
			name: "header only decodes to empty",
			data: wavBytes(),
			want: []float32{},
		},
		{
			name:    "truncated header",
			data:    make([]byte, HeaderSize-1),
			wantErr: true,
		},
		{
			name:    "empty input",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "odd payload length",
			data:    append(wavBytes(0), 0x7f),
			wantErr: true,
		},
		{
			name: "scaling",
			data: wavBytes(0, 16384, -16384, 32767, -32768),
			want: []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodePCM16(tc.data)
			if tc.wantErr {
				if !errors.Is(err, engine.ErrInvalidAudioFormat) {
					t.Fatalf("err = %v, want ErrInvalidAudioFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i := range tc.want {
				if math.Abs(float64(got[i]-tc.want[i])) > 1e-6 {
					t.Errorf("sample[%d] = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestDuration(t *testing.T) {
	if d := Duration(SampleRate); d != 1.0 {
		t.Errorf("Duration(one second of samples) = %v, want 1.0", d)
	}
	if d := Duration(SampleRate * 20); d != 20.0 {
		t.Errorf("Duration(twenty seconds) = %v, want 20.0", d)
	}
	if d := Duration(0); d != 0 {
		t.Errorf("Duration(0) = %v, want 0", d)
	}
}
