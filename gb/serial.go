package gb

import (
	"io"

	"github.com/golang/glog"
)

const (
	serialBitCycles     = 512
	serialFastBitCycles = 16 // CGB high speed clock
	serialBits          = 8
)

// serial shifts SB out on the internal clock. Without a link partner every
// received bit is 1.
type serial struct {
	cnt    uint
	period uint64
	out    byte
	w      io.Writer
}

func (b *Bus) scWrite(data byte, cycle uint64) {
	b.updateSerial(cycle)
	if b.cgb {
		b.ioamhram.data[ioOffset+regSC] = data | 0x7C
	} else {
		b.ioamhram.data[ioOffset+regSC] = data | 0x7E
	}
	if data&0x81 != 0x81 {
		b.serial.cnt = 0
		b.sched.set(eventSerial, disabledTime)
		return
	}
	var start uint64
	if b.cgb && data&0x02 != 0 {
		b.serial.period = serialFastBitCycles
		start = cycle &^ 0x07
	} else {
		b.serial.period = serialBitCycles
		start = cycle &^ 0xFF
	}
	b.serial.cnt = serialBits
	b.serial.out = b.ioamhram.data[ioOffset+regSB]
	b.sched.set(eventSerial, start+b.serial.period*serialBits)
}

// shiftSB shifts n received 1 bits into SB.
func (b *Bus) shiftSB(n uint) {
	sb := &b.ioamhram.data[ioOffset+regSB]
	*sb = byte(uint(*sb)<<n | (1<<n - 1))
}

// updateSerial brings SB up to date for a transfer in progress.
func (b *Bus) updateSerial(cycle uint64) {
	t := b.sched.time(eventSerial)
	if t == disabledTime {
		return
	}
	if t <= cycle {
		b.serialEvent(t)
		return
	}
	target := uint((t - cycle + b.serial.period - 1) / b.serial.period)
	if target < b.serial.cnt {
		b.shiftSB(b.serial.cnt - target)
		b.serial.cnt = target
	}
}

func (b *Bus) serialEvent(t uint64) {
	b.shiftSB(b.serial.cnt)
	b.serial.cnt = 0
	b.ioamhram.data[ioOffset+regSC] &^= 0x80
	b.sched.set(eventSerial, disabledTime)
	b.flagIrq(irqSerial, t)
	if b.serial.w != nil {
		if _, err := b.serial.w.Write([]byte{b.serial.out}); err != nil {
			glog.Warningf("Serial output: %v", err)
		}
	}
}
