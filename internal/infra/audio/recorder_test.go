package audio

import (
	"errors"
	"testing"
	"time"
)

func buffers(n int, level int16) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		b := make([]int16, 100)
		for j := range b {
			b[j] = level
		}
		out[i] = b
	}
	return out
}

func TestPhraseDetector_StopsAfterTrailingSilence(t *testing.T) {
	// 1000 Hz sample rate, 100-sample buffers: each buffer is 100ms.
	d := newPhraseDetector(RecordOptions{SilenceTimeout: 300 * time.Millisecond, StartTimeout: time.Second}, 1000)

	var kept int
	feed := append(append(buffers(2, 0), buffers(3, 2000)...), buffers(5, 0)...)
	for i, buf := range feed {
		keep, done, err := d.Feed(buf)
		if err != nil {
			t.Fatalf("Feed error at %d: %v", i, err)
		}
		if keep {
			kept++
		}
		if done {
			if i != 7 {
				t.Errorf("finished at buffer %d, want 7", i)
			}
			break
		}
	}

	if kept != 6 {
		t.Errorf("kept buffers: got %d, want 6 (3 speech + 3 silence)", kept)
	}
}

func TestPhraseDetector_NoSpeech(t *testing.T) {
	d := newPhraseDetector(RecordOptions{StartTimeout: 500 * time.Millisecond}, 1000)

	for i, buf := range buffers(10, 10) {
		_, done, err := d.Feed(buf)
		if done {
			if !errors.Is(err, ErrNoSpeech) {
				t.Errorf("got %v, want ErrNoSpeech", err)
			}
			if i != 4 {
				t.Errorf("gave up at buffer %d, want 4", i)
			}
			return
		}
	}
	t.Fatal("detector never gave up")
}

func TestPhraseDetector_MaxDuration(t *testing.T) {
	d := newPhraseDetector(RecordOptions{MaxDuration: 400 * time.Millisecond}, 1000)

	for i, buf := range buffers(10, -3000) {
		_, done, _ := d.Feed(buf)
		if done {
			if i != 3 {
				t.Errorf("stopped at buffer %d, want 3", i)
			}
			return
		}
	}
	t.Fatal("detector never hit max duration")
}
