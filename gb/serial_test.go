package gb

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestSerialTransfer(t *testing.T) {
	b := newTestBus(t, false)
	var out bytes.Buffer
	b.serial.w = &out
	b.FFWrite(regIF, 0x00, 0)
	b.FFWrite(regSB, 0x42, 0)
	b.FFWrite(regSC, 0x81, 0)
	assert.Equal(t, uint64(serialBitCycles*serialBits), b.sched.time(eventSerial))
	assert.Equal(t, byte(0xFF), b.FFRead(regSC, 0))

	assert.Equal(t, byte(0x17), b.FFRead(regSB, 3*serialBitCycles+1))

	cycle, _ := b.Event(3*serialBitCycles + 1)
	assert.Equal(t, uint64(serialBitCycles*serialBits), cycle)
	assert.Equal(t, byte(0xFF), b.FFRead(regSB, cycle))
	assert.Equal(t, byte(0x7F), b.FFRead(regSC, cycle))
	assert.Equal(t, irqSerial, b.irq.ifReg&irqSerial)
	assert.Equal(t, disabledTime, b.sched.time(eventSerial))
	if got := out.Bytes(); !bytes.Equal(got, []byte{0x42}) {
		t.Fatalf("serial output: got=%x, want=42", got)
	}
}

func TestSerialStartAligned(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regSC, 0x81, 0x1F0)
	assert.Equal(t, uint64(0x100+serialBitCycles*serialBits), b.sched.time(eventSerial))

	cgb := newTestBus(t, true)
	cgb.FFWrite(regSC, 0x83, 0x1F3)
	assert.Equal(t, uint64(0x1F0+serialFastBitCycles*serialBits), cgb.sched.time(eventSerial))
	assert.Equal(t, byte(0xFF), cgb.FFRead(regSC, 0x1F3))
}

func TestSerialExternalClockWaits(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regSC, 0x80, 0)
	assert.Equal(t, disabledTime, b.sched.time(eventSerial))

	b.FFWrite(regSC, 0x81, 0)
	b.FFWrite(regSC, 0x00, 100)
	assert.Equal(t, disabledTime, b.sched.time(eventSerial))
}
