package ui

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 44100
	// The bus produces one sample every two cycles of the 4 MiHz clock.
	nativeRate = 1 << 21
)

// resampler decimates native rate samples to sampleRate, keeping the
// fractional position between calls.
type resampler struct {
	acc int
}

// frames calls f with the left and right channel of every sample kept.
func (r *resampler) frames(buf []uint32, f func(l, r int16)) {
	for _, s := range buf {
		r.acc += sampleRate
		if r.acc < nativeRate {
			continue
		}
		r.acc -= nativeRate
		f(int16(s>>16), int16(s))
	}
}

// audio plays the samples through the default output device. It is a
// gb.AudioSink.
type audio struct {
	stream  *portaudio.Stream
	channel chan float32
	rs      resampler
}

func newAudio() *audio {
	a := &audio{}
	a.channel = make(chan float32, sampleRate)
	return a
}

// Samples implements gb.AudioSink. Samples are dropped while the device
// lags behind.
func (a *audio) Samples(buf []uint32) {
	dropped := 0
	a.rs.frames(buf, func(l, r int16) {
		for _, x := range [2]int16{l, r} {
			select {
			case a.channel <- float32(x) / 32768:
			default:
				dropped++
			}
		}
	})
	if dropped > 0 && glog.V(3) {
		glog.Infof("Dropped %d audio samples\n", dropped)
	}
}

func (a *audio) start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("Failed to initialize portaudio: %w", err)
	}
	cb := func(out []float32) {
		for i := range out {
			select {
			case x := <-a.channel:
				out[i] = x
			default:
				out[i] = 0
			}
		}
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, 0, cb)
	if err != nil {
		return fmt.Errorf("Failed to open the audio stream: %w", err)
	}
	a.stream = stream
	if err := stream.Start(); err != nil {
		return fmt.Errorf("Failed to start the audio stream: %w", err)
	}
	return nil
}

func (a *audio) terminate() {
	if a.stream != nil {
		a.stream.Close()
	}
	portaudio.Terminate()
}
