package gb

// LCD mode boundaries within a visible line, in single speed cycles.
const (
	mode2Cycles = 80
	mode3End    = 252
	// ly153ZeroCycles is how long line 153 reads back as 153 before LY
	// already shows 0.
	ly153ZeroCycles = 4
)

// VideoSink receives the video memory at the start of every VBlank.
// Rendering pixels from it is left to the sink.
type VideoSink interface {
	Blit(vram []byte, frame uint64)
}

// lcd holds the LCD controller registers and line timing. Pixel rendering
// is out of scope, only the timing that raises interrupts lives here.
type lcd struct {
	lcdc   byte
	stat   byte
	ly     lyCounter
	lyc    lycIrq
	frames uint64
}

func (l *lcd) enabled() bool {
	return l.lcdc&0x80 != 0
}

func (l *lcd) reset(ds bool) {
	l.lcdc = 0
	l.stat = 0
	l.ly = lyCounter{}
	l.ly.reset(0, ds)
	l.lyc.reset()
	l.lyc.ds = ds
	l.frames = 0
}

// rescheduleLyc recomputes the LYC event from the current line.
func (b *Bus) rescheduleLyc(cycle uint64) {
	if !b.lcd.enabled() {
		b.lcd.lyc.time = disabledTime
	} else {
		b.lcd.ly.update(cycle)
		b.lcd.lyc.schedule(&b.lcd.ly, cycle)
	}
	b.sched.set(eventLYC, b.lcd.lyc.time)
}

func (b *Bus) lcdcWrite(data byte, cycle uint64) {
	was := b.lcd.enabled()
	b.lcd.lcdc = data
	b.ioamhram.data[ioOffset+regLCDC] = data
	switch {
	case !was && b.lcd.enabled():
		b.lcd.ly.reset(cycle, b.ds)
		b.sched.set(eventBlit, b.lcd.ly.lineStart(vblankLine))
		b.rescheduleLyc(cycle)
	case was && !b.lcd.enabled():
		b.lcd.ly.update(cycle)
		b.lcd.ly.ly = 0
		b.rescheduleLyc(cycle)
	}
}

func (b *Bus) statWrite(data byte, cycle uint64) {
	b.lcd.stat = data & 0x78
	b.lcd.lyc.statEnabled = data&0x40 != 0
	b.lcd.lyc.m2IrqEnabled = data&0x20 != 0
	b.rescheduleLyc(cycle)
}

func (b *Bus) lycWrite(data byte, cycle uint64) {
	b.ioamhram.data[ioOffset+regLYC] = data
	if !b.lcd.enabled() {
		b.lcd.lyc.lycReg = data
		return
	}
	b.lcd.ly.update(cycle)
	b.lcd.lyc.lycReg = data
	if !b.lcd.lyc.statEnabled {
		return
	}
	b.lcd.lyc.lycRegChange(data, &b.lcd.ly, cycle)
	b.sched.set(eventLYC, b.lcd.lyc.time)
}

func (b *Bus) readLY(cycle uint64) byte {
	if !b.lcd.enabled() {
		return 0
	}
	b.lcd.ly.update(cycle)
	if b.lcd.ly.ly == lastLine && b.lcd.ly.lineCycle(cycle) >= ly153ZeroCycles {
		return 0
	}
	return byte(b.lcd.ly.ly)
}

func (b *Bus) readSTAT(cycle uint64) byte {
	stat := 0x80 | b.lcd.stat
	if !b.lcd.enabled() {
		return stat
	}
	if b.readLY(cycle) == b.lcd.lyc.lycReg {
		stat |= 0x04
	}
	switch lc := b.lcd.ly.lineCycle(cycle); {
	case b.lcd.ly.ly >= vblankLine:
		stat |= 1
	case lc < mode2Cycles:
		stat |= 2
	case lc < mode3End:
		stat |= 3
	}
	return stat
}

// blitEvent marks the start of VBlank.
func (b *Bus) blitEvent(t uint64) {
	if b.lcd.enabled() {
		b.flagIrq(irqVBlank, t)
	}
	b.lcd.frames++
	if b.video != nil {
		b.video.Blit(b.vram.data, b.lcd.frames)
	}
	b.sched.set(eventBlit, t+frameCycles<<speedShift(b.ds))
}

func (b *Bus) lycEvent(t uint64) {
	if b.lcd.lyc.doEvent() {
		b.flagIrq(irqSTAT, t)
	}
	b.sched.set(eventLYC, b.lcd.lyc.time)
}

// speedChange switches between single and double speed, stretching or
// shrinking the remaining time of every LCD deadline.
func (b *Bus) speedChange(cycle uint64) {
	b.fillSoundBuffer(cycle)
	if b.lcd.enabled() {
		b.lcd.ly.update(cycle)
	}
	b.ds = !b.ds
	scale := func(t uint64) uint64 {
		if t == disabledTime || t < cycle {
			return t
		}
		if b.ds {
			return cycle + (t-cycle)<<1
		}
		return cycle + (t-cycle)>>1
	}
	b.lcd.ly.time = scale(b.lcd.ly.time)
	b.lcd.ly.lineTime = lineCycles << speedShift(b.ds)
	b.lcd.ly.ds = b.ds
	b.lcd.lyc.ds = b.ds
	b.sched.set(eventBlit, scale(b.sched.time(eventBlit)))
	b.rescheduleLyc(cycle)
}
