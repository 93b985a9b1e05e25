package ui

import (
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/jgb/gb"
)

// Config is the frontend configuration.
type Config struct {
	Width   int
	Height  int
	Palette *Palette
	// Mute disables the portaudio stream.
	Mute bool
	// WavPath records the audio when set.
	WavPath string
}

// sinks fans the samples out to several sinks.
type sinks []gb.AudioSink

func (s sinks) Samples(buf []uint32) {
	for _, sink := range s {
		sink.Samples(buf)
	}
}

// The LCD refreshes at 4194304/70224 Hz.
const framePeriod = time.Second * gb.FrameCycles / (1 << 22)

func mainLoop(window *glfw.Window, console *gb.Console, viewer *tileViewer, program uint32) {
	var shown uint64
	for range time.Tick(framePeriod) {
		glfw.PollEvents()
		console.SetButtons(getKeys(window))
		console.RunFor(gb.FrameCycles)
		if img, frame := viewer.image(); frame != shown {
			shown = frame
			updateTexture(program, img)
			window.SwapBuffers()
		}
		if window.ShouldClose() {
			return
		}
	}
}

// Start is the main entrypoint. It returns when the window is closed.
func Start(console *gb.Console, cfg Config) {
	var out sinks
	if !cfg.Mute {
		a := newAudio()
		if err := a.start(); err != nil {
			glog.Warningf("Running without audio: %v\n", err)
		} else {
			defer a.terminate()
			out = append(out, a)
		}
	}
	if cfg.WavPath != "" {
		w, err := newWavWriter(cfg.WavPath)
		if err != nil {
			glog.Fatalln(err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				glog.Errorf("Failed to close %s: %v\n", cfg.WavPath, err)
			}
		}()
		out = append(out, w)
	}
	console.SetAudioSink(out)
	viewer := newTileViewer(cfg.Palette)
	console.SetVideoSink(viewer)

	err := glfw.Init()
	if err != nil {
		glog.Fatalln(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	title := "JGB"
	if t := console.Cartridge().Title; t != "" {
		title += " - " + t
	}
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, title, nil, nil)
	if err != nil {
		glog.Fatalln(err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glog.Fatalln(err)
	}
	program, err := newProgram()
	if err != nil {
		glog.Fatalln(err)
	}
	gl.UseProgram(program)
	mainLoop(window, console, viewer, program)
}
