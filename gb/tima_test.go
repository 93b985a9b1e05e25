package gb

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTimaOverflow(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regIF, 0x00, 0)
	b.FFWrite(regTMA, 0xF0, 0)
	b.FFWrite(regTAC, 0x05, 0)
	b.FFWrite(regTIMA, 0xFE, 0)
	assert.Equal(t, uint64(32), b.sched.time(eventTIMA))
	assert.Equal(t, byte(0xFF), b.FFRead(regTIMA, 16))

	cycle, _ := b.Event(16)
	assert.Equal(t, uint64(32), cycle)
	assert.Equal(t, irqTimer, b.irq.ifReg&irqTimer)
	assert.Equal(t, byte(0xF0), b.FFRead(regTIMA, 32))
	assert.Equal(t, uint64(32+16*16), b.sched.time(eventTIMA))
	assert.Equal(t, byte(0xF3), b.FFRead(regTIMA, 32+16*3))
}

func TestTimaClocks(t *testing.T) {
	tests := []struct {
		tac    byte
		period uint64
	}{
		{0x04, 1024},
		{0x05, 16},
		{0x06, 64},
		{0x07, 256},
	}
	for _, tt := range tests {
		b := newTestBus(t, false)
		b.FFWrite(regTAC, tt.tac, 0)
		if got := b.FFRead(regTIMA, 10*tt.period); got != 10 {
			t.Fatalf("TAC=0x%02x TIMA: got=%d, want=10", tt.tac, got)
		}
		assert.Equal(t, tt.tac|0xF8, b.FFRead(regTAC, 10*tt.period))
	}
}

func TestTimaDisabled(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regTIMA, 0x10, 0)
	b.FFWrite(regTAC, 0x01, 0)
	assert.Equal(t, disabledTime, b.sched.time(eventTIMA))
	assert.Equal(t, byte(0x10), b.FFRead(regTIMA, 100000))
}

func TestTimaAlignsToDIV(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regTAC, 0x05, 10)
	assert.Equal(t, uint64(0), b.tima.lastUpdate)
	assert.Equal(t, byte(1), b.FFRead(regTIMA, 16))

	b.FFWrite(regDIV, 0x00, 40)
	assert.Equal(t, byte(2), b.FFRead(regTIMA, 40))
	assert.Equal(t, byte(2), b.FFRead(regTIMA, 55))
	assert.Equal(t, byte(3), b.FFRead(regTIMA, 56))
}

func TestDIV(t *testing.T) {
	b := newTestBus(t, false)
	assert.Equal(t, byte(3), b.FFRead(regDIV, 0x3FF))
	b.FFWrite(regDIV, 0x55, 0x310)
	assert.Equal(t, byte(0), b.FFRead(regDIV, 0x40F))
	assert.Equal(t, byte(1), b.FFRead(regDIV, 0x410))
}
