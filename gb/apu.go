package gb

// SampleGenerator synthesizes audio from the sound registers. Each sample
// is stereo with the left channel in the high 16 bits.
type SampleGenerator interface {
	Generate(out []uint32, regs []byte)
}

// AudioSink receives the samples produced by a RunFor call, one per two
// cycles in single speed.
type AudioSink interface {
	Samples(buf []uint32)
}

// silence is the default generator.
type silence struct{}

func (silence) Generate(out []uint32, regs []byte) {
	for i := range out {
		out[i] = 0
	}
}

// apu keeps the sample clock in step with the bus. Synthesis itself is
// delegated to gen.
type apu struct {
	lastUpdate uint64
	gen        SampleGenerator
	buf        []uint32
}

func (a *apu) reset() {
	a.lastUpdate = 0
	a.buf = a.buf[:0]
}

// fillSoundBuffer renders the samples due by cycle with the register values
// in effect until then.
func (b *Bus) fillSoundBuffer(cycle uint64) {
	if cycle <= b.apu.lastUpdate {
		return
	}
	shift := 1 + speedShift(b.ds)
	n := int((cycle - b.apu.lastUpdate) >> shift)
	if n == 0 {
		return
	}
	b.apu.lastUpdate += uint64(n) << shift
	start := len(b.apu.buf)
	if need := start + n; cap(b.apu.buf) < need {
		buf := make([]uint32, start, 2*need)
		copy(buf, b.apu.buf)
		b.apu.buf = buf
	}
	b.apu.buf = b.apu.buf[:start+n]
	b.apu.gen.Generate(b.apu.buf[start:], b.ioamhram.data[ioOffset+regNR10:ioOffset+regWave+0x10])
}

// drainSound hands the buffered samples to sink and empties the buffer.
func (b *Bus) drainSound(sink AudioSink) int {
	n := len(b.apu.buf)
	if sink != nil && n > 0 {
		sink.Samples(b.apu.buf)
	}
	b.apu.buf = b.apu.buf[:0]
	return n
}
