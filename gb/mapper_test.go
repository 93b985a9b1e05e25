package gb

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// bankRecorder records the calls a mapper makes.
type bankRecorder struct {
	rombank0 int
	rombank  int
	rambank  int
	flags    RAMFlags
}

func (r *bankRecorder) SetRombank0(bank int) { r.rombank0 = bank }
func (r *bankRecorder) SetRombank(bank int) { r.rombank = bank }
func (r *bankRecorder) SetRambank(flags RAMFlags, bank int) {
	r.flags = flags
	r.rambank = bank
}

func TestNewMapper(t *testing.T) {
	tests := []struct {
		cartType  byte
		romOnly   bool
		zeroIsOne bool
		hasRTC    bool
	}{
		{0x00, true, false, false},
		{0x09, true, false, false},
		{0x01, false, true, false},
		{0x13, false, true, false},
		{0x10, false, true, true},
		{0x1B, false, false, false},
		{0xFC, false, false, false},
	}
	for _, tt := range tests {
		m := NewMapper(&Cartridge{Type: tt.cartType})
		if _, ok := m.(*romOnly); ok != tt.romOnly {
			t.Fatalf("type 0x%02x: got=%T", tt.cartType, m)
		}
		if bm, ok := m.(*banked); ok {
			assert.Equal(t, tt.zeroIsOne, bm.zeroIsOne)
			assert.Equal(t, tt.hasRTC, bm.hasRTC)
		}
	}
}

func TestRomOnlyMapper(t *testing.T) {
	var r bankRecorder
	m := &romOnly{hasRAM: true}
	m.Reset(&r)
	assert.Equal(t, 1, r.rombank)
	assert.Equal(t, RAMReadEnable|RAMWriteEnable, r.flags)
	m.Write(0x2000, 0x03, &r)
	assert.Equal(t, 1, r.rombank)
}

func TestBankedMapper(t *testing.T) {
	var r bankRecorder
	m := newBanked(true, false)
	m.Reset(&r)
	assert.Equal(t, 1, r.rombank)
	assert.Equal(t, RAMFlags(0), r.flags)

	m.Write(0x2100, 0x00, &r)
	assert.Equal(t, 1, r.rombank)
	m.Write(0x2000, 0x25, &r)
	m.Write(0x3000, 0x01, &r)
	assert.Equal(t, 0x125, r.rombank)

	m.Write(0x0000, 0x0A, &r)
	assert.Equal(t, RAMReadEnable|RAMWriteEnable, r.flags)
	m.Write(0x5000, 0x13, &r)
	assert.Equal(t, 3, r.rambank)
	m.Write(0x1FFF, 0x00, &r)
	assert.Equal(t, RAMFlags(0), r.flags)

	regs := m.Registers()
	other := newBanked(true, false)
	other.SetRegisters(regs)
	assert.Equal(t, regs, other.Registers())

	mbc5 := newBanked(false, false)
	mbc5.Reset(&r)
	mbc5.Write(0x2000, 0x00, &r)
	assert.Equal(t, 0, r.rombank)
}

func TestBankedMapperRTC(t *testing.T) {
	b := newTestConsole(t, testROM(0x10, 4, 0x03, false)).Bus()
	b.Write(0x0000, 0x0A, 0)
	b.Write(0xA000, 0x12, 0)
	b.Write(0x4000, 0x08, 0)
	assert.True(t, b.banks.ramFlags&RAMRTCEnable != 0)
	b.Write(0xA000, 0x3B, 0)
	assert.Equal(t, byte(0x3B), b.Read(0xA000, 0))
	b.Write(0x4000, 0x0C, 0)
	assert.Equal(t, byte(0x00), b.Read(0xB000, 0))
	b.Write(0x6000, 0x00, 0)
	b.Write(0x6000, 0x01, 0)

	b.Write(0x4000, 0x00, 0)
	assert.Equal(t, byte(0x12), b.Read(0xA000, 0))
	b.Write(0x4000, 0x08, 0)
	assert.Equal(t, byte(0x3B), b.Read(0xA000, 0))

	regs := b.mapper.Registers()
	assert.Equal(t, byte(0x3B), regs.RTC[0])
}
