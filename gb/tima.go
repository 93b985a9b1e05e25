package gb

// timaClock is the log2 of the TIMA period in cycles for each TAC clock
// select: 4096, 262144, 65536 and 16384 Hz.
var timaClock = [4]uint{10, 4, 6, 8}

// tima is the DIV aligned timer counter (TIMA, TMA, TAC).
type tima struct {
	lastUpdate uint64
	tima       byte
	tma        byte
	tac        byte
}

func (t *tima) reset() {
	t.lastUpdate = 0
	t.tima = 0
	t.tma = 0
	t.tac = 0
}

func (t *tima) enabled() bool {
	return t.tac&0x04 != 0
}

func (t *tima) shift() uint {
	return timaClock[t.tac&0x03]
}

// align moves the tick phase onto the DIV counter.
func (t *tima) align(cycle, divLastUpdate uint64) {
	period := uint64(1) << t.shift()
	t.lastUpdate = cycle - (cycle-divLastUpdate)&(period-1)
}

// update advances the counter to cycle and reports whether it overflowed.
func (t *tima) update(cycle uint64) bool {
	if !t.enabled() {
		return false
	}
	s := t.shift()
	ticks := (cycle - t.lastUpdate) >> s
	if ticks == 0 {
		return false
	}
	t.lastUpdate += ticks << s
	toOverflow := 256 - uint64(t.tima)
	if ticks < toOverflow {
		t.tima += byte(ticks)
		return false
	}
	ticks -= toOverflow
	t.tima = t.tma + byte(ticks%(256-uint64(t.tma)))
	return true
}

func (t *tima) eventTime() uint64 {
	if !t.enabled() {
		return disabledTime
	}
	return t.lastUpdate + (256-uint64(t.tima))<<t.shift()
}

func (b *Bus) updateTima(cycle uint64) {
	if b.tima.update(cycle) {
		b.flagIrq(irqTimer, cycle)
	}
}

func (b *Bus) readTIMA(cycle uint64) byte {
	b.updateTima(cycle)
	return b.tima.tima
}

func (b *Bus) timaEvent(t uint64) {
	b.updateTima(t)
	b.sched.set(eventTIMA, b.tima.eventTime())
}

func (b *Bus) timaWrite(reg, data byte, cycle uint64) {
	b.updateTima(cycle)
	switch reg {
	case regTIMA:
		b.tima.tima = data
	case regTMA:
		b.tima.tma = data
		b.ioamhram.data[ioOffset+regTMA] = data
	case regTAC:
		was, clock := b.tima.enabled(), b.tima.tac&0x03
		b.tima.tac = data & 0x07
		if b.tima.enabled() && (!was || clock != data&0x03) {
			b.tima.align(cycle, b.divLastUpdate)
		}
		b.ioamhram.data[ioOffset+regTAC] = data | 0xF8
	}
	b.sched.set(eventTIMA, b.tima.eventTime())
}

// divWrite resets the divider, which restarts the TIMA phase.
func (b *Bus) divWrite(cycle uint64) {
	b.updateTima(cycle)
	b.divLastUpdate = cycle
	b.tima.lastUpdate = cycle
	b.sched.set(eventTIMA, b.tima.eventTime())
}

func (b *Bus) readDIV(cycle uint64) byte {
	return byte((cycle - b.divLastUpdate) >> 8)
}
