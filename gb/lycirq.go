package gb

const (
	lineCycles      = 456
	linesPerFrame   = 154
	frameCycles     = lineCycles * linesPerFrame
	vblankLine      = 144
	lastLine        = 153
	lastVisibleLine = vblankLine - 1

	// lycLine0Offset places the LYC=0 match 8 cycles into line 153, where
	// LY already reads 0.
	lycLine0Offset = 8
	// A LYC write landing between lycRegChangeMin>>ds and lycRegChangeMax
	// cycles before the computed match is too late to be seen this frame.
	lycRegChangeMin = 4
	lycRegChangeMax = 8
)

func speedShift(ds bool) uint {
	if ds {
		return 1
	}
	return 0
}

// lyCounter tracks the current LCD line. time is the cycle at which ly
// increments next.
type lyCounter struct {
	time     uint64
	lineTime uint64
	ly       uint
	ds       bool
}

func (l *lyCounter) reset(cycle uint64, ds bool) {
	l.ds = ds
	l.lineTime = lineCycles << speedShift(ds)
	l.ly = 0
	l.time = cycle + l.lineTime
}

func (l *lyCounter) update(cycle uint64) {
	if cycle < l.time {
		return
	}
	lines := (cycle-l.time)/l.lineTime + 1
	l.time += lines * l.lineTime
	l.ly = uint((uint64(l.ly) + lines) % linesPerFrame)
}

// lineStart returns the first cycle of line after the current one.
func (l *lyCounter) lineStart(line uint) uint64 {
	n := (line + 2*linesPerFrame - l.ly - 1) % linesPerFrame
	return l.time + uint64(n)*l.lineTime
}

// lineCycle returns the position within the current line in single speed
// cycles.
func (l *lyCounter) lineCycle(cycle uint64) uint64 {
	return (l.lineTime - (l.time - cycle)) >> speedShift(l.ds)
}

// lycIrq raises the STAT interrupt when LY matches LYC.
type lycIrq struct {
	time   uint64
	lycReg byte
	// statEnabled is STAT bit 6, the event is only armed while it is set.
	statEnabled bool
	// m2IrqEnabled is STAT bit 5. A mode 2 interrupt on the same line has
	// already requested STAT, so the LYC request is swallowed.
	m2IrqEnabled bool
	ds           bool
}

func (l *lycIrq) reset() {
	l.time = disabledTime
	l.lycReg = 0
	l.statEnabled = false
	l.m2IrqEnabled = false
	l.ds = false
}

func (l *lycIrq) frameTime() uint64 {
	return frameCycles << speedShift(l.ds)
}

// doEvent reports whether the STAT interrupt is requested and rearms one
// frame later.
func (l *lycIrq) doEvent() bool {
	raise := !l.m2IrqEnabled || l.lycReg > lastVisibleLine || l.lycReg == 0
	l.time += l.frameTime()
	return raise
}

// schedule computes the next match from the line counter, which must be up
// to date with cycle.
func (l *lycIrq) schedule(ly *lyCounter, cycle uint64) {
	if !l.statEnabled || l.lycReg > lastLine {
		l.time = disabledTime
		return
	}
	target := uint64(lastLine*lineCycles + lycLine0Offset)
	if l.lycReg != 0 {
		target = uint64(l.lycReg) * lineCycles
	}
	next := ly.time + (((lastLine-uint64(ly.ly))*lineCycles + target) << speedShift(ly.ds)) - 1
	if next-cycle > l.frameTime() {
		next -= l.frameTime()
	}
	l.time = next
}

// lycRegChange handles a write to LYC.
func (l *lycIrq) lycRegChange(v byte, ly *lyCounter, cycle uint64) {
	l.lycReg = v
	l.schedule(ly, cycle)
	if l.time == disabledTime || l.lycReg == 0 {
		return
	}
	d := l.time - cycle
	if d > lycRegChangeMin>>speedShift(ly.ds) && d < lycRegChangeMax {
		l.time += l.frameTime()
	}
}
