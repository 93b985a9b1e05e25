package gb

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

const statLycEnable = 0x40

func TestLycZeroSchedulesOnLine153(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regSTAT, statLycEnable, 0)
	want := uint64(lastLine*lineCycles + lycLine0Offset - 1)
	assert.Equal(t, want, b.sched.time(eventLYC))
}

func TestLycSchedule(t *testing.T) {
	tests := []struct {
		lyc  byte
		want uint64
	}{
		{1, 1*lineCycles - 1},
		{10, 10*lineCycles - 1},
		{143, 143*lineCycles - 1},
		{153, 153*lineCycles - 1},
	}
	for _, tt := range tests {
		b := newTestBus(t, false)
		b.FFWrite(regLYC, tt.lyc, 0)
		b.FFWrite(regSTAT, statLycEnable, 0)
		if got := b.sched.time(eventLYC); got != tt.want {
			t.Fatalf("LYC=%d: got=%d, want=%d", tt.lyc, got, tt.want)
		}
	}
}

func TestLycOutOfRangeIsDisabled(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regSTAT, statLycEnable, 0)
	b.FFWrite(regLYC, 154, 0)
	assert.Equal(t, disabledTime, b.sched.time(eventLYC))

	b.FFWrite(regLYC, 10, 0)
	b.FFWrite(regSTAT, 0x00, 0)
	assert.Equal(t, disabledTime, b.sched.time(eventLYC))

	b.FFWrite(regSTAT, statLycEnable, 0)
	b.FFWrite(regLCDC, 0x11, 0)
	assert.Equal(t, disabledTime, b.sched.time(eventLYC))
}

func TestLycLateWriteWaitsAFrame(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regSTAT, statLycEnable, 0)
	b.FFWrite(regLYC, 10, 10*lineCycles-7)
	assert.Equal(t, uint64(10*lineCycles-1+frameCycles), b.sched.time(eventLYC))

	b.FFWrite(regLYC, 11, 10*lineCycles-7)
	assert.Equal(t, uint64(11*lineCycles-1), b.sched.time(eventLYC))
}

func TestLycEventRaisesStat(t *testing.T) {
	b := newTestBus(t, false)
	b.FFWrite(regIF, 0x00, 0)
	b.FFWrite(regLYC, 2, 0)
	b.FFWrite(regSTAT, statLycEnable, 0)
	cycle, next := b.Event(0)
	assert.Equal(t, uint64(2*lineCycles-1), cycle)
	assert.Equal(t, irqSTAT, b.irq.ifReg&irqSTAT)
	assert.Equal(t, uint64(2*lineCycles-1+frameCycles), b.sched.time(eventLYC))
	assert.Equal(t, uint64(vblankLine*lineCycles), next)
	assert.Equal(t, byte(0x80|statLycEnable|0x04|0x02), b.FFRead(regSTAT, 2*lineCycles))
}

// The LYC request is dropped while the mode 2 interrupt is enabled, except
// for LYC=0 and LYC values outside the visible lines. This reproduces the
// hardware behaviour as observed, not a symmetric rule.
func TestLycMode2Suppression(t *testing.T) {
	tests := []struct {
		name string
		m2   bool
		lyc  byte
		want bool
	}{
		{"m2 off", false, 10, true},
		{"m2 off lyc 0", false, 0, true},
		{"m2 on", true, 10, false},
		{"m2 on last visible line", true, 143, false},
		{"m2 on lyc 0", true, 0, true},
		{"m2 on vblank line", true, 144, true},
		{"m2 on line 153", true, 153, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lycIrq{time: 1000, lycReg: tt.lyc, statEnabled: true, m2IrqEnabled: tt.m2}
			assert.Equal(t, tt.want, l.doEvent())
			assert.Equal(t, uint64(1000+frameCycles), l.time)
		})
	}
}

func TestLyCounter(t *testing.T) {
	var l lyCounter
	l.reset(100, false)
	l.update(100 + 3*lineCycles + 5)
	assert.Equal(t, uint(3), l.ly)
	assert.Equal(t, uint64(100+4*lineCycles), l.time)
	assert.Equal(t, uint64(5), l.lineCycle(100+3*lineCycles+5))
	assert.Equal(t, uint64(100+vblankLine*lineCycles), l.lineStart(vblankLine))
	l.update(100 + 156*lineCycles)
	assert.Equal(t, uint(2), l.ly)
}

func TestReadLY(t *testing.T) {
	b := newTestBus(t, false)
	assert.Equal(t, byte(0), b.FFRead(regLY, 0))
	assert.Equal(t, byte(5), b.FFRead(regLY, 5*lineCycles+1))
	assert.Equal(t, byte(153), b.FFRead(regLY, lastLine*lineCycles+1))
	assert.Equal(t, byte(0), b.FFRead(regLY, lastLine*lineCycles+ly153ZeroCycles))
	assert.Equal(t, byte(0x81), b.FFRead(regSTAT, frameCycles+vblankLine*lineCycles+10)&0x83)
}
