package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// CaptureFormat is what the microphone records: 16 kHz mono 16-bit PCM.
func CaptureFormat() Format {
	return Format{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}

// WriteWAV writes little-endian PCM data with a canonical 44-byte RIFF header.
func WriteWAV(w io.Writer, pcm []byte, f Format) error {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitDepth <= 0 || f.BitDepth%8 != 0 {
		return fmt.Errorf("invalid wav format: %+v", f)
	}

	blockAlign := f.Channels * f.BitDepth / 8
	byteRate := f.SampleRate * blockAlign
	dataSize := len(pcm)

	var buf bytes.Buffer
	buf.Grow(44)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(f.BitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return nil
}

func samplesToPCM(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

// SamplesToWAV encodes mono 16-bit samples as a WAV file.
func SamplesToWAV(samples []int16, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	f := Format{SampleRate: sampleRate, Channels: 1, BitDepth: 16}
	if err := WriteWAV(&buf, samplesToPCM(samples), f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
