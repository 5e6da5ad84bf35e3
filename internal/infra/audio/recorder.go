package audio

import "time"

type RecordOptions struct {
	// StartTimeout is how long to wait for speech to begin.
	StartTimeout time.Duration
	// MaxDuration caps the recorded phrase. Zero means no cap beyond
	// the hard limit.
	MaxDuration time.Duration
	// SilenceTimeout ends the recording after this much trailing silence.
	SilenceTimeout time.Duration
	// Threshold is the absolute sample level treated as speech.
	Threshold int16
}

const hardRecordLimit = 2 * time.Minute

func DefaultRecordOptions() RecordOptions {
	return RecordOptions{
		StartTimeout:   20 * time.Second,
		SilenceTimeout: time.Second,
		Threshold:      500,
	}
}

func (o RecordOptions) withDefaults() RecordOptions {
	d := DefaultRecordOptions()
	if o.StartTimeout <= 0 {
		o.StartTimeout = d.StartTimeout
	}
	if o.SilenceTimeout <= 0 {
		o.SilenceTimeout = d.SilenceTimeout
	}
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.MaxDuration <= 0 || o.MaxDuration > hardRecordLimit {
		o.MaxDuration = hardRecordLimit
	}
	return o
}

// phraseDetector tracks one utterance across fixed-size sample buffers.
type phraseDetector struct {
	opts        RecordOptions
	sampleRate  int
	waited      int
	recorded    int
	silentRun   int
	speechHeard bool
}

func newPhraseDetector(opts RecordOptions, sampleRate int) *phraseDetector {
	return &phraseDetector{opts: opts.withDefaults(), sampleRate: sampleRate}
}

func (p *phraseDetector) samplesFor(d time.Duration) int {
	return int(d.Seconds() * float64(p.sampleRate))
}

// Feed consumes one buffer and reports whether to keep it and whether the
// phrase is finished. Buffers before the first speech are dropped.
func (p *phraseDetector) Feed(buf []int16) (keep, done bool, err error) {
	loud := false
	for _, s := range buf {
		if s > p.opts.Threshold || s < -p.opts.Threshold {
			loud = true
			break
		}
	}

	if !p.speechHeard {
		if !loud {
			p.waited += len(buf)
			if p.waited >= p.samplesFor(p.opts.StartTimeout) {
				return false, true, ErrNoSpeech
			}
			return false, false, nil
		}
		p.speechHeard = true
	}

	p.recorded += len(buf)
	if loud {
		p.silentRun = 0
	} else {
		p.silentRun += len(buf)
	}

	if p.silentRun >= p.samplesFor(p.opts.SilenceTimeout) {
		return true, true, nil
	}
	if p.recorded >= p.samplesFor(p.opts.MaxDuration) {
		return true, true, nil
	}
	return true, false, nil
}
