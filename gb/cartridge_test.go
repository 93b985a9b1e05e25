package gb

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewCartridge(t *testing.T) {
	rom := testROM(0x13, 16, 0x03, true)
	c, err := NewCartridge(rom)
	assert.NoError(t, err)
	assert.Equal(t, "JGBTEST", c.Title)
	assert.True(t, c.CGB)
	assert.Equal(t, byte(0x13), c.Type)
	assert.Equal(t, 16, c.ROMBanks)
	assert.Equal(t, 4, c.RAMBanks)
	assert.True(t, c.Battery)
}

func TestNewCartridgeSizes(t *testing.T) {
	tests := []struct {
		name     string
		cartType byte
		ramCode  byte
		wantRAM  int
	}{
		{"no ram", 0x01, 0x00, 0},
		{"2 KiB", 0x02, 0x01, 1},
		{"8 KiB", 0x02, 0x02, 1},
		{"32 KiB", 0x03, 0x03, 4},
		{"128 KiB", 0x1B, 0x04, 16},
		{"64 KiB", 0x1B, 0x05, 8},
		{"mbc2", 0x06, 0x00, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCartridge(testROM(tt.cartType, 2, tt.ramCode, false))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantRAM, c.RAMBanks)
			assert.Equal(t, 2, c.ROMBanks)
		})
	}
}

func TestNewCartridgeErrors(t *testing.T) {
	_, err := NewCartridge(make([]byte, headerEnd-1))
	assert.True(t, err != nil)

	rom := testROM(0x00, 2, 0x00, false)
	rom[romSizeAddr] = 0x09
	_, err = NewCartridge(rom)
	assert.True(t, err != nil)

	rom = testROM(0x00, 2, 0x00, false)
	rom[ramSizeAddr] = 0x06
	_, err = NewCartridge(rom)
	assert.True(t, err != nil)
}

func TestCartridgeImageSizeMismatch(t *testing.T) {
	rom := testROM(0x19, 4, 0x00, false)
	rom[romSizeAddr] = 0x02
	c, err := NewCartridge(rom[:3*romBankSize])
	assert.NoError(t, err)
	assert.Equal(t, 8, c.ROMBanks)
	buf := make([]byte, c.ROMBanks*romBankSize)
	c.load(buf)
	assert.Equal(t, rom[2*romBankSize+5], buf[2*romBankSize+5])
	assert.Equal(t, byte(0xFF), buf[3*romBankSize])

	big := testROM(0x19, 8, 0x00, false)
	big[romSizeAddr] = 0x00
	c, err = NewCartridge(big)
	assert.NoError(t, err)
	assert.Equal(t, 8, c.ROMBanks)
}

func TestHeaderChecksum(t *testing.T) {
	rom := testROM(0x00, 2, 0x00, false)
	assert.Equal(t, rom[checksumEnd], headerChecksum(rom))
	rom[titleStart] ^= 0xFF
	assert.True(t, rom[checksumEnd] != headerChecksum(rom))
}

func TestNewConsoleForceDMG(t *testing.T) {
	rom := testROM(0x1B, 8, 0x03, true)
	c, err := NewConsole(rom, Options{ForceDMG: true})
	assert.NoError(t, err)
	assert.False(t, c.Bus().CGB())
	assert.Equal(t, minWRAMBanks, c.Bus().Banks().WRAMBanks())

	c, err = NewConsole(rom, Options{})
	assert.NoError(t, err)
	assert.True(t, c.Bus().CGB())
	assert.Equal(t, maxWRAMBanks, c.Bus().Banks().WRAMBanks())

	_, err = NewConsole(rom[:0x100], Options{})
	assert.True(t, err != nil)
}
