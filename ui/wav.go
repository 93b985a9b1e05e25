package ui

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/golang/glog"
)

// wavWriter records the samples into a 16 bit stereo WAV file.
type wavWriter struct {
	f   *os.File
	enc *wav.Encoder
	rs  resampler
	buf *goaudio.IntBuffer
}

// newWavWriter creates the file at path.
func newWavWriter(path string) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to create %s: %w", path, err)
	}
	return &wavWriter{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, 16, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// Samples implements gb.AudioSink.
func (w *wavWriter) Samples(buf []uint32) {
	w.buf.Data = w.buf.Data[:0]
	w.rs.frames(buf, func(l, r int16) {
		w.buf.Data = append(w.buf.Data, int(l), int(r))
	})
	if len(w.buf.Data) == 0 {
		return
	}
	if err := w.enc.Write(w.buf); err != nil {
		glog.Warningf("Failed to write audio: %v\n", err)
	}
}

// Close finalizes the header and closes the file.
func (w *wavWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
