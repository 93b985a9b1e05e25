package gb

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Cartridge header layout.
// Reference:
//   https://gbdev.io/pandocs/The_Cartridge_Header.html
const (
	headerEnd      = 0x150
	titleStart     = 0x134
	titleEnd       = 0x143
	cgbFlag        = 0x143
	cartTypeAddr   = 0x147
	romSizeAddr    = 0x148
	ramSizeAddr    = 0x149
	checksumStart  = 0x134
	checksumEnd    = 0x14D
	maxROMSizeCode = 8
)

// ramSizeBanks maps the RAM size code to 8 KiB banks. Code 1 (2 KiB) is
// rounded up to a full bank.
var ramSizeBanks = [...]int{0, 1, 1, 4, 16, 8}

// Cartridge is a parsed ROM image.
type Cartridge struct {
	Title    string
	CGB      bool
	Type     byte
	ROMBanks int
	RAMBanks int
	Battery  bool
	rom      []byte
}

func hasBattery(cartType byte) bool {
	switch cartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0x22, 0xFF:
		return true
	}
	return false
}

// hasRTC reports a clock, always battery backed on the types that have one.
func (c *Cartridge) hasRTC() bool {
	return c.Type == 0x0F || c.Type == 0x10
}

// headerChecksum computes the checksum the boot ROM verifies.
func headerChecksum(data []byte) byte {
	var x byte
	for _, v := range data[checksumStart:checksumEnd] {
		x = x - v - 1
	}
	return x
}

// NewCartridge parses the header of a ROM image.
func NewCartridge(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, fmt.Errorf("The buffer is too short for a cartridge header: %d bytes", len(data))
	}
	c := &Cartridge{
		Title:   strings.TrimRight(string(data[titleStart:titleEnd]), "\x00"),
		CGB:     data[cgbFlag]&0x80 != 0,
		Type:    data[cartTypeAddr],
		Battery: hasBattery(data[cartTypeAddr]),
	}
	code := data[romSizeAddr]
	if code > maxROMSizeCode {
		return nil, fmt.Errorf("Unknown ROM size code: 0x%02x", code)
	}
	c.ROMBanks = 2 << code
	ramCode := int(data[ramSizeAddr])
	if ramCode >= len(ramSizeBanks) {
		return nil, fmt.Errorf("Unknown RAM size code: 0x%02x", ramCode)
	}
	c.RAMBanks = ramSizeBanks[ramCode]
	if (c.Type == 0x05 || c.Type == 0x06) && c.RAMBanks == 0 {
		// MBC2 has 512 half bytes of RAM built in.
		c.RAMBanks = 1
	}
	if sum := headerChecksum(data); sum != data[checksumEnd] {
		glog.Warningf("Header checksum mismatch: got=0x%02x, want=0x%02x", sum, data[checksumEnd])
	}
	size := c.ROMBanks * romBankSize
	switch {
	case len(data) < size:
		glog.Warningf("ROM image is %d bytes, header says %d, padding with 0xFF", len(data), size)
	case len(data) > size:
		for c.ROMBanks < maxROMBanks && c.ROMBanks*romBankSize < len(data) {
			c.ROMBanks *= 2
		}
		glog.Warningf("ROM image is %d bytes, header says %d, using %d banks", len(data), size, c.ROMBanks)
	}
	c.rom = data
	glog.Infof("Cartridge: title=%q type=0x%02x cgb=%v rom=%d banks ram=%d banks battery=%v",
		c.Title, c.Type, c.CGB, c.ROMBanks, c.RAMBanks, c.Battery)
	return c, nil
}

// load copies the image into rom, padding the tail with 0xFF.
func (c *Cartridge) load(rom []byte) {
	n := copy(rom, c.rom)
	fill(rom[n:], 0xFF)
}
