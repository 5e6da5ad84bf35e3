package gtts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

// maxChunk is the longest text the translate endpoint accepts per request.
const maxChunk = 100

type Config struct {
	Language string
	TLD      string
	Timeout  time.Duration
}

// Synthesizer speaks text through the Google Translate TTS endpoint. Long
// text is sent in chunks and the returned MP3 segments are concatenated.
type Synthesizer struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

func NewSynthesizer(cfg Config) *Synthesizer {
	tld := cfg.TLD
	if tld == "" {
		tld = "com"
	}
	return NewSynthesizerWithURL(cfg, "https://translate.google."+tld)
}

func NewSynthesizerWithURL(cfg Config, baseURL string) *Synthesizer {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Synthesizer{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		language:   cfg.Language,
	}
}

func (s *Synthesizer) Name() string {
	return "gtts"
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	const op = "gtts.Synthesize"

	chunks := SplitText(text, maxChunk)
	if len(chunks) == 0 {
		return domain.Errorf(domain.KindUpstream, op, "nothing to speak")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := s.fetch(ctx, op, chunk, i, len(chunks))
		if err != nil {
			return err
		}
		audio.Write(data)
	}

	return infra.WriteFileAtomic(op, outputPath, audio.Bytes())
}

func (s *Synthesizer) fetch(ctx context.Context, op, chunk string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", s.language)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, infra.TransportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, infra.TransportError(op, fmt.Errorf("reading audio: %w", err))
	}

	if !infra.IsSuccessHTTPStatus(resp.StatusCode) {
		return nil, infra.StatusError(op, resp.StatusCode, data)
	}

	if len(data) == 0 {
		return nil, domain.Errorf(domain.KindUpstream, op, "empty audio for chunk %d/%d", idx+1, total)
	}

	return data, nil
}

// SplitText breaks text into pieces of at most limit runes, preferring
// whitespace boundaries. Words longer than limit are cut.
func SplitText(text string, limit int) []string {
	var chunks []string
	var current []rune

	flush := func() {
		if s := strings.TrimSpace(string(current)); s != "" {
			chunks = append(chunks, s)
		}
		current = current[:0]
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > limit {
			flush()
			chunks = append(chunks, string(w[:limit]))
			w = w[limit:]
		}

		needed := len(w)
		if len(current) > 0 {
			needed++
		}
		if len(current)+needed > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, w...)
	}
	flush()

	return chunks
}
