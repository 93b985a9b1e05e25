package gb

import (
	"fmt"

	"github.com/golang/glog"
)

const (
	romBankSize  = 0x4000
	ramBankSize  = 0x2000
	wramBankSize = 0x1000
	guardSize    = 0x4000 // 16 KiB
	disabledSize = 0x2000 // one RAM bank worth of 0xFF, one of write sink

	maxROMBanks  = 512
	maxRAMBanks  = 16
	minWRAMBanks = 2
	maxWRAMBanks = 8
)

// RAMFlags selects how the cartridge RAM window at 0xA000-0xBFFF behaves.
type RAMFlags uint8

const (
	RAMReadEnable RAMFlags = 1 << iota
	RAMWriteEnable
	// RAMRTCEnable routes the RAM window to the cartridge's real time clock
	// registers, which are only reachable through the slow path.
	RAMRTCEnable
)

// OamDmaSrc is the memory area an OAM DMA transfer is reading from.
type OamDmaSrc uint8

const (
	OamDmaSrcROM OamDmaSrc = iota
	OamDmaSrcSRAM
	OamDmaSrcVRAM
	OamDmaSrcWRAM
	OamDmaSrcInvalid
	OamDmaSrcOff
)

func (s OamDmaSrc) String() string {
	switch s {
	case OamDmaSrcROM:
		return "rom"
	case OamDmaSrcSRAM:
		return "sram"
	case OamDmaSrcVRAM:
		return "vram"
	case OamDmaSrcWRAM:
		return "wram"
	case OamDmaSrcInvalid:
		return "invalid"
	case OamDmaSrcOff:
		return "off"
	}
	return fmt.Sprintf("OamDmaSrc(%d)", uint8(s))
}

// region tags the part of the arena a window points into.
type region uint8

const (
	regionNone region = iota // not directly addressable, use the slow path
	regionROM
	regionRAM
	regionWRAM
	regionDisabledRead
	regionDisabledWrite
	numRegions
)

// window resolves one 4 KiB slice of the address space: arena[base+address].
type window struct {
	region region
	base   int
}

type span struct {
	start, end int
}

// BankTable owns the backing store of a cartridge (ROM, cartridge RAM and
// work RAM in one arena) and derives the sixteen read and sixteen write
// windows used for O(1) address resolution.
//
// Memory map by top nibble:
//   0x0-0x3  ROM bank 0 (fixed, remappable by some mappers)
//   0x4-0x7  switchable ROM bank
//   0x8-0x9  VRAM, always slow path
//   0xA-0xB  cartridge RAM bank, disabled RAM or RTC
//   0xC      WRAM bank 0
//   0xD      switchable WRAM bank
//   0xE      echo of WRAM bank 0
//   0xF      echo/OAM/IO/HRAM, always slow path
type BankTable struct {
	arena []byte
	spans [numRegions]span

	romBanks  int
	ramBanks  int
	wramBanks int

	rombank0  int
	rombank   int
	rambank   int
	ramFlags  RAMFlags
	wrambank  int
	oamDmaSrc OamDmaSrc
	cgb       bool

	rmem [16]window
	wmem [16]window
}

// NewBankTable creates a bank table without a backing store, Reset must be
// called before use.
func NewBankTable(cgb bool) *BankTable {
	return &BankTable{cgb: cgb, oamDmaSrc: OamDmaSrcOff}
}

func validGeometry(romBanks, ramBanks, wramBanks int) error {
	if romBanks < 1 || romBanks > maxROMBanks {
		return fmt.Errorf("Invalid number of ROM banks: %d", romBanks)
	}
	if ramBanks < 0 || ramBanks > maxRAMBanks {
		return fmt.Errorf("Invalid number of RAM banks: %d", ramBanks)
	}
	if wramBanks < minWRAMBanks || wramBanks > maxWRAMBanks {
		return fmt.Errorf("Invalid number of WRAM banks: %d", wramBanks)
	}
	return nil
}

// Reset reallocates the backing store for the given geometry and maps ROM
// bank 1, RAM bank 0 (disabled) and WRAM bank 1. No window survives from the
// previous arena.
func (t *BankTable) Reset(romBanks, ramBanks, wramBanks int) error {
	if err := validGeometry(romBanks, ramBanks, wramBanks); err != nil {
		return err
	}
	offset := 0
	next := func(size int) span {
		s := span{offset, offset + size}
		offset += size
		return s
	}
	var spans [numRegions]span
	next(guardSize)
	spans[regionROM] = next(romBanks * romBankSize)
	next(guardSize)
	spans[regionRAM] = next(ramBanks * ramBankSize)
	spans[regionWRAM] = next(wramBanks * wramBankSize)
	spans[regionDisabledRead] = next(disabledSize)
	spans[regionDisabledWrite] = next(disabledSize)

	t.arena = make([]byte, offset)
	t.spans = spans
	t.romBanks = romBanks
	t.ramBanks = ramBanks
	t.wramBanks = wramBanks
	fill(t.region(regionDisabledRead), 0xFF)

	t.rombank0 = 0
	t.rombank = 1 % romBanks
	t.rambank = 0
	t.ramFlags = 0
	t.wrambank = 1
	t.oamDmaSrc = OamDmaSrcOff
	t.remap()
	glog.V(1).Infof("Bank table reset: rom=%d ram=%d wram=%d arena=%d bytes", romBanks, ramBanks, wramBanks, len(t.arena))
	return nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// region returns the arena slice of a region.
func (t *BankTable) region(r region) []byte {
	s := t.spans[r]
	return t.arena[s.start:s.end]
}

// SetRombank0 maps bank into 0x0000-0x3FFF.
func (t *BankTable) SetRombank0(bank int) {
	t.rombank0 = t.wrapROM(bank)
	glog.V(2).Infof("ROM bank 0 window: bank=%d", t.rombank0)
	t.remap()
}

// SetRombank maps bank into 0x4000-0x7FFF. Bank 0 is allowed here.
func (t *BankTable) SetRombank(bank int) {
	t.rombank = t.wrapROM(bank)
	glog.V(2).Infof("ROM bank window: bank=%d", t.rombank)
	t.remap()
}

// SetRambank selects the cartridge RAM bank and whether the window is
// readable, writable or taken over by the RTC.
func (t *BankTable) SetRambank(flags RAMFlags, bank int) {
	t.ramFlags = flags
	if t.ramBanks > 0 {
		t.rambank = bank % t.ramBanks
	} else {
		t.rambank = 0
	}
	glog.V(2).Infof("RAM bank window: bank=%d flags=%03b", t.rambank, flags)
	t.remap()
}

// SetWrambank maps bank&7 into 0xD000-0xDFFF; 0 selects bank 1.
func (t *BankTable) SetWrambank(bank int) {
	b := bank & 0x07
	if b == 0 {
		b = 1
	}
	t.wrambank = b % t.wramBanks
	if t.wrambank == 0 {
		t.wrambank = 1
	}
	t.remap()
}

// SetOamDmaSrc records the active OAM DMA source and disconnects the areas
// the DMA occupies on the bus.
func (t *BankTable) SetOamDmaSrc(src OamDmaSrc) {
	t.oamDmaSrc = src
	glog.V(2).Infof("OAM DMA source: %s", src)
	t.remap()
}

func (t *BankTable) wrapROM(bank int) int {
	if bank < 0 {
		bank = -bank
	}
	return bank % t.romBanks
}

// mapped computes the window of one nibble from the current bank indices,
// ignoring DMA contention.
func (t *BankTable) mapped(nibble int, write bool) window {
	rom := t.spans[regionROM].start
	switch nibble {
	case 0x0, 0x1, 0x2, 0x3:
		if write {
			return window{}
		}
		return window{regionROM, rom + t.rombank0*romBankSize}
	case 0x4, 0x5, 0x6, 0x7:
		if write {
			return window{}
		}
		return window{regionROM, rom + t.rombank*romBankSize - 0x4000}
	case 0xA, 0xB:
		return t.ramWindow(write)
	case 0xC:
		return window{regionWRAM, t.spans[regionWRAM].start - 0xC000}
	case 0xD:
		return window{regionWRAM, t.spans[regionWRAM].start + t.wrambank*wramBankSize - 0xD000}
	case 0xE:
		return window{regionWRAM, t.spans[regionWRAM].start - 0xE000}
	}
	return window{}
}

func (t *BankTable) ramWindow(write bool) window {
	disabledRead := window{regionDisabledRead, t.spans[regionDisabledRead].start - 0xA000}
	disabledWrite := window{regionDisabledWrite, t.spans[regionDisabledWrite].start - 0xA000}
	var bank window
	switch {
	case t.ramFlags&RAMRTCEnable != 0:
		bank = window{}
	case t.ramBanks > 0:
		bank = window{regionRAM, t.spans[regionRAM].start + t.rambank*ramBankSize - 0xA000}
	default:
		bank = disabledWrite
	}
	if write {
		if t.ramFlags&RAMWriteEnable != 0 {
			return bank
		}
		return disabledWrite
	}
	if t.ramFlags&RAMReadEnable != 0 && bank != disabledWrite {
		return bank
	}
	return disabledRead
}

// remap rebuilds all 32 windows from the bank indices.
func (t *BankTable) remap() {
	for n := 0; n < 16; n++ {
		t.rmem[n] = t.mapped(n, false)
		t.wmem[n] = t.mapped(n, true)
	}
	t.disconnectOamDmaAreas()
}

// Nibble masks of the areas an OAM DMA can occupy.
const (
	romNibbles  uint16 = 0x00FF
	sramNibbles uint16 = 0x0C00
	wramNibbles uint16 = 0x7000
)

// contention returns the nibbles whose read and write windows are
// disconnected by the active OAM DMA source.
func (t *BankTable) contention() (read, write uint16) {
	switch t.oamDmaSrc {
	case OamDmaSrcVRAM, OamDmaSrcOff:
		return 0, 0
	case OamDmaSrcWRAM:
		if t.cgb {
			return wramNibbles, wramNibbles
		}
	}
	read, write = romNibbles|sramNibbles, sramNibbles
	if !t.cgb {
		read |= wramNibbles
		write |= wramNibbles
	}
	return read, write
}

// contended reports whether an access to address collides with the OAM DMA.
func (t *BankTable) contended(address uint16, write bool) bool {
	read, wr := t.contention()
	mask := read
	if write {
		mask = wr
	}
	return mask&(1<<(address>>12)) != 0
}

func (t *BankTable) disconnectOamDmaAreas() {
	read, write := t.contention()
	for n := uint(0); n < 16; n++ {
		if read&(1<<n) != 0 {
			t.rmem[n] = window{}
		}
		if write&(1<<n) != 0 {
			t.wmem[n] = window{}
		}
	}
}

// read is the fast path. ok is false when the address must take the slow path.
func (t *BankTable) read(address uint16) (data byte, ok bool) {
	w := t.rmem[address>>12]
	if w.region == regionNone {
		return 0, false
	}
	i := w.base + int(address)
	if debugChecks {
		t.check(w, i, address)
	}
	return t.arena[i], true
}

// write is the fast path. ok is false when the address must take the slow path.
func (t *BankTable) write(address uint16, data byte) bool {
	w := t.wmem[address>>12]
	if w.region == regionNone {
		return false
	}
	i := w.base + int(address)
	if debugChecks {
		t.check(w, i, address)
	}
	t.arena[i] = data
	return true
}

func (t *BankTable) check(w window, i int, address uint16) {
	s := t.spans[w.region]
	if i < s.start || i >= s.end {
		panic(fmt.Sprintf("window for 0x%04x resolves to %d outside region %d [%d, %d)", address, i, w.region, s.start, s.end))
	}
}

// peek reads through the bank indices without DMA contention, as the DMA
// engine itself sees memory. Slow path areas read 0xFF.
func (t *BankTable) peek(address uint16) byte {
	w := t.mapped(int(address>>12), false)
	if w.region == regionNone {
		return 0xFF
	}
	return t.arena[w.base+int(address)]
}

// ROM returns the ROM region, the cartridge image is copied here on load.
func (t *BankTable) ROM() []byte {
	return t.region(regionROM)
}

// RAM returns the cartridge RAM region (battery backed on some cartridges).
func (t *BankTable) RAM() []byte {
	return t.region(regionRAM)
}

// WRAM returns all work RAM banks.
func (t *BankTable) WRAM() []byte {
	return t.region(regionWRAM)
}

func (t *BankTable) ROMBanks() int { return t.romBanks }
func (t *BankTable) RAMBanks() int { return t.ramBanks }
func (t *BankTable) WRAMBanks() int { return t.wramBanks }

// wramAt reads WRAM for echo addresses above 0xF000, which mirror the
// switchable bank.
func (t *BankTable) wramAt(address uint16) *byte {
	s := t.spans[regionWRAM]
	a := int(address-0xE000) & 0x1FFF
	if a < 0x1000 {
		return &t.arena[s.start+a]
	}
	return &t.arena[s.start+t.wrambank*wramBankSize+a-0x1000]
}
