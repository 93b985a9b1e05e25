package gb

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

type frameCounter struct {
	frames []uint64
	size   int
}

func (f *frameCounter) Blit(vram []byte, frame uint64) {
	f.frames = append(f.frames, frame)
	f.size = len(vram)
}

type sampleCounter struct {
	n int
}

func (s *sampleCounter) Samples(buf []uint32) {
	s.n += len(buf)
}

// constantGenerator writes NR50 into every sample.
type constantGenerator struct{}

func (constantGenerator) Generate(out []uint32, regs []byte) {
	for i := range out {
		out[i] = uint32(regs[0x24-regNR10])
	}
}

func TestConsoleRunFor(t *testing.T) {
	c := newTestConsole(t, testROM(0x00, 2, 0x00, false))
	video := &frameCounter{}
	audio := &sampleCounter{}
	c.SetVideoSink(video)
	c.SetAudioSink(audio)

	assert.Equal(t, uint64(FrameCycles), c.RunFor(FrameCycles))
	assert.Equal(t, 1, len(video.frames))
	assert.Equal(t, vramBankSize, video.size)
	assert.Equal(t, FrameCycles/2, audio.n)

	for i := 0; i < 59; i++ {
		c.RunFor(FrameCycles)
	}
	assert.Equal(t, 60, len(video.frames))
	assert.Equal(t, uint64(60), video.frames[59])
	assert.Equal(t, 60*FrameCycles/2, audio.n)
}

func TestConsoleHaltedCPUSkipsToEvents(t *testing.T) {
	c := newTestConsole(t, testROM(0x00, 2, 0x00, false))
	c.Bus().Halt()
	cycle := c.RunFor(3 * FrameCycles)
	assert.Equal(t, uint64(3*FrameCycles), cycle)
	assert.True(t, c.Bus().Halted())
}

func TestConsoleSampleGenerator(t *testing.T) {
	c := newTestConsole(t, testROM(0x00, 2, 0x00, true))
	var got []uint32
	c.SetAudioSink(sinkFunc(func(buf []uint32) { got = append(got, buf...) }))
	c.SetSampleGenerator(constantGenerator{})
	c.Bus().FFWrite(0x24, 0x77, 0)
	c.RunFor(100)
	c.Bus().FFWrite(0x24, 0x11, 100)
	c.RunFor(100)
	assert.Equal(t, 100, len(got))
	assert.Equal(t, uint32(0x77), got[0])
	assert.Equal(t, uint32(0x77), got[49])
	assert.Equal(t, uint32(0x11), got[50])

	c.Bus().FFWrite(regKEY1, 0x01, 200)
	c.Bus().Stop(200)
	got = got[:0]
	c.RunFor(100)
	assert.Equal(t, 25, len(got))
}

type sinkFunc func([]uint32)

func (f sinkFunc) Samples(buf []uint32) { f(buf) }

func TestConsoleSaveRAM(t *testing.T) {
	c := newTestConsole(t, testROM(0x03, 4, 0x02, false))
	c.Bus().Write(0x0000, 0x0A, 0)
	c.Bus().Write(0xA010, 0x42, 0)
	ram := c.SaveRAM()
	assert.Equal(t, ramBankSize, len(ram))
	assert.Equal(t, byte(0x42), ram[0x10])

	d := newTestConsole(t, testROM(0x03, 4, 0x02, false))
	assert.NoError(t, d.LoadSaveRAM(ram))
	d.Bus().Write(0x0000, 0x0A, 0)
	assert.Equal(t, byte(0x42), d.Bus().Read(0xA010, 0))
	assert.True(t, d.LoadSaveRAM(ram[:10]) != nil)

	noBattery := newTestConsole(t, testROM(0x02, 4, 0x02, false))
	assert.True(t, noBattery.SaveRAM() == nil)
}

func TestConsoleReset(t *testing.T) {
	c := newTestConsole(t, testROM(0x1B, 8, 0x03, false))
	c.Bus().Write(0x2000, 0x05, 0)
	c.Bus().Write(0xC000, 0x12, 0)
	c.RunFor(2 * FrameCycles)
	c.Reset()
	assert.Equal(t, uint64(0), c.Cycle())
	assert.Equal(t, 1, c.Bus().Banks().rombank)
	assert.Equal(t, byte(0), c.Bus().Read(0xC000, 0))
	assert.Equal(t, uint64(vblankLine*lineCycles), c.Bus().NextEventTime())
}

func TestIdleCPU(t *testing.T) {
	var cpu IdleCPU
	assert.Equal(t, uint64(50), cpu.Run(nil, 10, 50))
	assert.Equal(t, uint64(60), cpu.Run(nil, 60, 50))
	assert.Equal(t, uint64(10+interruptDispatchCycles), cpu.Interrupt(nil, 0x40, 10))
}

func TestConsoleRTCData(t *testing.T) {
	c := newTestConsole(t, testROM(0x10, 4, 0x02, false))
	c.Bus().Write(0x0000, 0x0A, 0)
	c.Bus().Write(0x4000, 0x09, 0)
	c.Bus().Write(0xA000, 0x2A, 0)
	rtc := c.RTCData()
	if !bytes.Equal(rtc, []byte{0, 0x2A, 0, 0, 0}) {
		t.Fatalf("RTCData: got=%v, want=[0 42 0 0 0]", rtc)
	}

	d := newTestConsole(t, testROM(0x10, 4, 0x02, false))
	assert.NoError(t, d.LoadRTCData(rtc))
	d.Bus().Write(0x0000, 0x0A, 0)
	d.Bus().Write(0x4000, 0x09, 0)
	assert.Equal(t, byte(0x2A), d.Bus().Read(0xA000, 0))
	assert.True(t, d.LoadRTCData(rtc[:2]) != nil)

	noClock := newTestConsole(t, testROM(0x03, 4, 0x02, false))
	assert.True(t, noClock.RTCData() == nil)
	assert.True(t, noClock.LoadRTCData(rtc) != nil)
}
