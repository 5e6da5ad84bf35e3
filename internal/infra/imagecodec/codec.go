package imagecodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"voice-doctor/internal/domain"
)

const DefaultMaxSize = 15 * 1024 * 1024

var extMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type Codec struct {
	maxSize int64
}

func New(maxSize int64) *Codec {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Codec{maxSize: maxSize}
}

func (c *Codec) Encode(path string) (domain.EncodedImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.EncodedImage{}, domain.NewError(domain.KindNotFound, "imagecodec.Encode", err)
		}
		return domain.EncodedImage{}, domain.NewError(domain.KindIO, "imagecodec.Encode", err)
	}

	if info.IsDir() {
		return domain.EncodedImage{}, domain.Errorf(domain.KindIO, "imagecodec.Encode", "%s is a directory", path)
	}

	if info.Size() > c.maxSize {
		return domain.EncodedImage{}, domain.Errorf(domain.KindIO, "imagecodec.Encode",
			"image too large: %.1f MB", float64(info.Size())/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.EncodedImage{}, domain.NewError(domain.KindIO, "imagecodec.Encode", fmt.Errorf("reading image: %w", err))
	}

	return domain.EncodedImage{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType(path, data),
	}, nil
}

func Decode(img domain.EncodedImage) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return nil, domain.NewError(domain.KindCodec, "imagecodec.Decode", err)
	}
	return data, nil
}

// mediaType sniffs the content first and falls back to the extension.
// Unknown images are declared as JPEG.
func mediaType(path string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if mt, ok := extMediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "image/jpeg"
}
