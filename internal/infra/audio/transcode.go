package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

// MP3ToWAV decodes MP3 in-process and writes 16-bit stereo PCM WAV.
type MP3ToWAV struct{}

func NewMP3ToWAV() *MP3ToWAV {
	return &MP3ToWAV{}
}

func (t *MP3ToWAV) Transcode(ctx context.Context, srcPath, dstPath string) error {
	const op = "audio.Transcode"

	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewError(domain.KindNotFound, op, err)
		}
		return domain.NewError(domain.KindIO, op, fmt.Errorf("opening mp3: %w", err))
	}
	defer src.Close()

	decoder, err := mp3.NewDecoder(src)
	if err != nil {
		return domain.NewError(domain.KindCodec, op, fmt.Errorf("reading mp3 stream: %w", err))
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return domain.NewError(domain.KindCodec, op, fmt.Errorf("decoding mp3: %w", err))
	}
	if len(pcm) == 0 {
		return domain.Errorf(domain.KindCodec, op, "mp3 contained no audio frames")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// go-mp3 always yields interleaved stereo 16-bit samples.
	format := Format{SampleRate: decoder.SampleRate(), Channels: 2, BitDepth: 16}

	var wav bytes.Buffer
	if err := WriteWAV(&wav, pcm, format); err != nil {
		return domain.NewError(domain.KindCodec, op, err)
	}

	return infra.WriteFileAtomic(op, dstPath, wav.Bytes())
}
