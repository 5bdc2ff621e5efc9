package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteWAVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, 320); err != nil {
		t.Fatalf("WriteWAVHeader: %v", err)
	}

	header := buf.Bytes()
	if len(header) != HeaderSize {
		t.Fatalf("header length = %d, want %d", len(header), HeaderSize)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(header[24:28]); rate != SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, SampleRate)
	}
	if size := binary.LittleEndian.Uint32(header[40:44]); size != 320 {
		t.Errorf("data size = %d, want 320", size)
	}
}

func TestWriteWAVHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, 4); err != nil {
		t.Fatalf("WriteWAVHeader: %v", err)
	}
	binary.Write(&buf, binary.LittleEndian, int16(16384))
	binary.Write(&buf, binary.LittleEndian, int16(-16384))

	samples, err := DecodePCM16(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if len(samples) != 2 || samples[0] != 0.5 || samples[1] != -0.5 {
		t.Errorf("samples = %v, want [0.5 -0.5]", samples)
	}
}
