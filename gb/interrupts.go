package gb

// Interrupt request bits of IF and IE.
const (
	irqVBlank byte = 1 << iota
	irqSTAT
	irqTimer
	irqSerial
	irqJoypad
)

const (
	// haltExitCycles is the delay between a pending interrupt and the CPU
	// leaving HALT.
	haltExitCycles = 4
	// ifUnusedBits always read back as 1.
	ifUnusedBits = 0xE0
)

// interrupts is the interrupt request state shared by the bus and the
// dispatched event handlers. The CPU only observes it.
type interrupts struct {
	ifReg      byte
	ieReg      byte
	ime        bool
	halted     bool
	minIntTime uint64
}

func (r *interrupts) pending() byte {
	return r.ifReg & r.ieReg & 0x1F
}

// vector returns the service address and bit of the highest priority
// pending interrupt.
func (r *interrupts) vector() (uint16, byte) {
	p := r.pending()
	for n := uint16(0); n < 5; n++ {
		if p&(1<<n) != 0 {
			return 0x40 + n*8, 1 << n
		}
	}
	return 0, 0
}

// updateIrqEvent arms or disarms the interrupt event after any change to
// IF, IE, IME or the halt state.
func (b *Bus) updateIrqEvent(cycle uint64) {
	if b.irq.pending() != 0 && (b.irq.ime || b.irq.halted) {
		t := b.irq.minIntTime
		if t < cycle {
			t = cycle
		}
		b.sched.set(eventInterrupts, t)
		return
	}
	b.sched.set(eventInterrupts, disabledTime)
}

// flagIrq requests the interrupts in bits at cycle.
func (b *Bus) flagIrq(bits byte, cycle uint64) {
	b.irq.ifReg |= bits
	b.updateIrqEvent(cycle)
}

// Halt puts the CPU into its low power state until an interrupt is pending.
func (b *Bus) Halt() {
	b.irq.halted = true
	b.updateIrqEvent(b.lastCycle)
}

// EI enables interrupts, the first one may be serviced one cycle later.
func (b *Bus) EI(cycle uint64) {
	if b.irq.ime {
		return
	}
	b.irq.ime = true
	b.irq.minIntTime = cycle + 1
	b.updateIrqEvent(cycle)
}

// DI disables interrupts.
func (b *Bus) DI() {
	b.irq.ime = false
	b.updateIrqEvent(b.lastCycle)
}

// IME reports the interrupt master enable flag.
func (b *Bus) IME() bool {
	return b.irq.ime
}

// Halted reports whether the CPU is waiting in HALT.
func (b *Bus) Halted() bool {
	return b.irq.halted
}

// serviceInterrupts leaves HALT and, with IME set, hands the highest
// priority request to the CPU.
func (b *Bus) serviceInterrupts(cycle uint64) uint64 {
	if b.irq.halted {
		b.irq.halted = false
		cycle += haltExitCycles
	}
	if b.irq.ime {
		if vector, bit := b.irq.vector(); bit != 0 {
			b.irq.ifReg &^= bit
			b.irq.ime = false
			cycle = b.cpu.Interrupt(b, vector, cycle)
		}
	}
	b.updateIrqEvent(cycle)
	return cycle
}
