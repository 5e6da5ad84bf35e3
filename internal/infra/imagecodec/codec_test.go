package imagecodec_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra/imagecodec"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestCodec_RoundTrip(t *testing.T) {
	original := append(append([]byte{}, pngHeader...), 0x00, 0xff, 0x10, 0x7f)
	path := writeFile(t, "rash.png", original)

	codec := imagecodec.New(0)
	img, err := codec.Encode(path)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := imagecodec.Decode(img)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Error("round trip changed the image bytes")
	}

	again, err := codec.Encode(path)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if again.Data != img.Data {
		t.Error("encoding is not deterministic")
	}
}

func TestCodec_MediaType(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "sniffed png", file: "photo.bin", data: pngHeader, want: "image/png"},
		{name: "sniffed jpeg", file: "photo", data: []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10}, want: "image/jpeg"},
		{name: "extension webp", file: "photo.webp", data: []byte("not sniffable"), want: "image/webp"},
		{name: "unknown defaults to jpeg", file: "photo.xyz", data: []byte("???"), want: "image/jpeg"},
	}

	codec := imagecodec.New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := codec.Encode(writeFile(t, tt.file, tt.data))
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if img.MediaType != tt.want {
				t.Errorf("MediaType: got %s, want %s", img.MediaType, tt.want)
			}
		})
	}
}

func TestCodec_Errors(t *testing.T) {
	codec := imagecodec.New(4)

	_, err := codec.Encode(filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing file: got %v, want not found", err)
	}

	_, err = codec.Encode(writeFile(t, "big.jpg", []byte("12345")))
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("oversized file: got %v, want io", err)
	}

	_, err = codec.Encode(t.TempDir())
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("directory: got %v, want io", err)
	}

	_, err = imagecodec.Decode(domain.EncodedImage{Data: "!!not base64!!"})
	if !errors.Is(err, domain.ErrCodec) {
		t.Errorf("bad base64: got %v, want codec", err)
	}
}
