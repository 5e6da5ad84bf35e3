package audio

import "errors"

// ErrNoSpeech is returned by Record when nobody spoke within StartTimeout.
var ErrNoSpeech = errors.New("no speech detected before timeout")
