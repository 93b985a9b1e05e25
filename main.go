package main

import (
	"errors"
	"flag"
	"io"
	"io/ioutil"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/golang/glog"

	"github.com/jyane/jgb/gb"
	"github.com/jyane/jgb/ui"
)

var (
	path       = flag.String("path", "./rom/sample.gb", "path to Game Boy ROM file")
	width      = flag.Int("width", 128*4, "window width")
	height     = flag.Int("height", 192*4, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run the debug console on stdin instead of the window")
	dmg        = flag.Bool("dmg", false, "run CGB cartridges in DMG mode")
	sysdir     = flag.String("sysdir", ".", "system directory holding palettes/")
	palette    = flag.String("palette", "", "palette file, overrides <sysdir>/palettes/<rom>.pal")
	wavPath    = flag.String("wav", "", "record audio to a WAV file")
	mute       = flag.Bool("mute", false, "disable audio output")
	serial     = flag.String("serial", "", "write serial output to file, - for stdout")
	stats      = flag.Bool("statsview", false, "serve runtime statistics")
	statsAddr  = flag.String("statsaddr", "localhost:12600", "statsview address")
)

// readFile reads file as bytes
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// savePath is the battery file next to the ROM.
func savePath(rom string) string {
	return strings.TrimSuffix(rom, ".gb") + ".sav"
}

func loadBattery(console *gb.Console) {
	ram := console.SaveRAM()
	if ram == nil {
		return
	}
	b, err := readFile(savePath(*path))
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		glog.Warningf("Failed to read save: %v\n", err)
		return
	}
	// RTC cartridges keep the clock registers after the RAM.
	if rtc := console.RTCData(); rtc != nil && len(b) == len(ram)+len(rtc) {
		if err := console.LoadRTCData(b[len(ram):]); err != nil {
			glog.Warningf("Ignoring clock: %v\n", err)
		}
		b = b[:len(ram)]
	}
	if err := console.LoadSaveRAM(b); err != nil {
		glog.Warningf("Ignoring save: %v\n", err)
	}
}

func storeBattery(console *gb.Console) {
	ram := console.SaveRAM()
	if ram == nil {
		return
	}
	data := append(append([]byte(nil), ram...), console.RTCData()...)
	if err := ioutil.WriteFile(savePath(*path), data, 0o644); err != nil {
		glog.Errorf("Failed to write save: %v\n", err)
	}
}

func serialOutput() (io.WriteCloser, error) {
	switch *serial {
	case "":
		return nil, nil
	case "-":
		return os.Stdout, nil
	}
	return os.Create(*serial)
}

func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *stats {
		ui.LaunchStats(*statsAddr)
	}
	buf, err := readFile(*path)
	if err != nil {
		glog.Fatalln("Failed to read: " + *path)
	}
	console, err := gb.NewConsole(buf, gb.Options{ForceDMG: *dmg})
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	loadBattery(console)
	defer storeBattery(console)
	w, err := serialOutput()
	if err != nil {
		glog.Fatalln("Failed to open serial output: ", err)
	}
	if w != nil {
		if w != os.Stdout {
			defer w.Close()
		}
		console.SetSerialOutput(w)
	}
	if *debug {
		if err := gb.NewDebugConsole(console, os.Stdin, os.Stdout).Run(); err != nil {
			glog.Errorln(err)
		}
		return
	}
	palettePath := *palette
	if palettePath == "" {
		palettePath = ui.PalettePath(*sysdir, *path)
	}
	p, err := ui.LoadPalette(palettePath)
	if err != nil {
		glog.Fatalln("Failed to load palette: ", err)
	}
	ui.Start(console, ui.Config{
		Width:   *width,
		Height:  *height,
		Palette: p,
		Mute:    *mute,
		WavPath: *wavPath,
	})
}
