package gb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrStateSize is returned for a buffer that does not match StateSize.
	ErrStateSize = errors.New("Wrong save state size")
	// ErrStateFormat is returned for a buffer that is not a save state of
	// this machine.
	ErrStateFormat = errors.New("Invalid save state")
)

const stateVersion = 1

var stateMagic = [4]byte{'J', 'G', 'B', 'S'}

// stateRegisters is the fixed layout of everything but the memories, which
// follow it in the buffer: OAM/IO/HRAM, VRAM, cartridge RAM and WRAM.
type stateRegisters struct {
	Magic     [4]byte
	Version   uint16
	CGB       bool
	ROMBanks  uint16
	RAMBanks  uint8
	WRAMBanks uint8

	Cycle      uint64
	Times      [numEvents]uint64
	IF, IE     uint8
	IME        bool
	Halted     bool
	MinIntTime uint64
	Ended      bool

	Rombank0    uint16
	Rombank     uint16
	Rambank     uint8
	RAMFlags    uint8
	Wrambank    uint8
	OamDmaSrc   uint8
	VRAMBank    uint8
	DoubleSpeed bool

	DivLastUpdate  uint64
	TimaLastUpdate uint64
	TIMA, TMA, TAC uint8

	SerialCnt    uint8
	SerialPeriod uint64
	SerialOut    uint8

	DMASource     uint16
	DMAPos        uint8
	DMALastUpdate uint64
	DMAActive     bool
	DMAStarted    bool

	LCDC, STAT uint8
	LYTime     uint64
	LY         uint8
	LYCTime    uint64
	LYC        uint8
	Frames     uint64

	APULastUpdate uint64
	Buttons       Buttons
	Mapper        MapperRegisters
}

func (b *Bus) memories() [][]byte {
	return [][]byte{b.ioamhram.data, b.vram.data, b.banks.RAM(), b.banks.WRAM()}
}

// StateSize returns the exact buffer size SaveState and LoadState take.
func (b *Bus) StateSize() int {
	n := binary.Size(stateRegisters{})
	for _, m := range b.memories() {
		n += len(m)
	}
	return n
}

func (b *Bus) registers(cycle uint64) *stateRegisters {
	t := b.banks
	return &stateRegisters{
		Magic:     stateMagic,
		Version:   stateVersion,
		CGB:       b.cgb,
		ROMBanks:  uint16(t.romBanks),
		RAMBanks:  uint8(t.ramBanks),
		WRAMBanks: uint8(t.wramBanks),

		Cycle:      cycle,
		Times:      b.sched.times,
		IF:         b.irq.ifReg,
		IE:         b.irq.ieReg,
		IME:        b.irq.ime,
		Halted:     b.irq.halted,
		MinIntTime: b.irq.minIntTime,
		Ended:      b.ended,

		Rombank0:    uint16(t.rombank0),
		Rombank:     uint16(t.rombank),
		Rambank:     uint8(t.rambank),
		RAMFlags:    uint8(t.ramFlags),
		Wrambank:    uint8(t.wrambank),
		OamDmaSrc:   uint8(t.oamDmaSrc),
		VRAMBank:    uint8(b.vrambank),
		DoubleSpeed: b.ds,

		DivLastUpdate:  b.divLastUpdate,
		TimaLastUpdate: b.tima.lastUpdate,
		TIMA:           b.tima.tima,
		TMA:            b.tima.tma,
		TAC:            b.tima.tac,

		SerialCnt:    uint8(b.serial.cnt),
		SerialPeriod: b.serial.period,
		SerialOut:    b.serial.out,

		DMASource:     b.dma.source,
		DMAPos:        uint8(b.dma.pos),
		DMALastUpdate: b.dma.lastUpdate,
		DMAActive:     b.dma.active,
		DMAStarted:    b.dma.started,

		LCDC:    b.lcd.lcdc,
		STAT:    b.lcd.stat,
		LYTime:  b.lcd.ly.time,
		LY:      uint8(b.lcd.ly.ly),
		LYCTime: b.lcd.lyc.time,
		LYC:     b.lcd.lyc.lycReg,
		Frames:  b.lcd.frames,

		APULastUpdate: b.apu.lastUpdate,
		Buttons:       b.joypad.buttons,
		Mapper:        b.mapper.Registers(),
	}
}

// SaveState serializes the machine into buf, which must be StateSize bytes.
func (b *Bus) SaveState(buf []byte) error {
	return b.saveState(buf, b.lastCycle)
}

// saveState records cycle as the current cycle without touching the bus.
func (b *Bus) saveState(buf []byte, cycle uint64) error {
	if len(buf) != b.StateSize() {
		return fmt.Errorf("%w: got=%d, want=%d", ErrStateSize, len(buf), b.StateSize())
	}
	w := bytes.NewBuffer(buf[:0])
	if err := binary.Write(w, binary.LittleEndian, b.registers(cycle)); err != nil {
		return fmt.Errorf("Failed to encode the save state: %w", err)
	}
	for _, m := range b.memories() {
		w.Write(m)
	}
	return nil
}

func (b *Bus) checkState(s *stateRegisters) error {
	t := b.banks
	switch {
	case s.Magic != stateMagic || s.Version != stateVersion:
		return fmt.Errorf("%w: bad header %q version %d", ErrStateFormat, s.Magic[:], s.Version)
	case s.CGB != b.cgb:
		return fmt.Errorf("%w: cgb=%v, machine cgb=%v", ErrStateFormat, s.CGB, b.cgb)
	case int(s.ROMBanks) != t.romBanks || int(s.RAMBanks) != t.ramBanks || int(s.WRAMBanks) != t.wramBanks:
		return fmt.Errorf("%w: geometry rom=%d ram=%d wram=%d", ErrStateFormat, s.ROMBanks, s.RAMBanks, s.WRAMBanks)
	case int(s.Rombank0) >= t.romBanks || int(s.Rombank) >= t.romBanks:
		return fmt.Errorf("%w: ROM bank out of range", ErrStateFormat)
	case t.ramBanks > 0 && int(s.Rambank) >= t.ramBanks, t.ramBanks == 0 && s.Rambank != 0:
		return fmt.Errorf("%w: RAM bank %d out of range", ErrStateFormat, s.Rambank)
	case s.Wrambank == 0 || int(s.Wrambank) >= t.wramBanks:
		return fmt.Errorf("%w: WRAM bank %d out of range", ErrStateFormat, s.Wrambank)
	case OamDmaSrc(s.OamDmaSrc) > OamDmaSrcOff:
		return fmt.Errorf("%w: OAM DMA source %d", ErrStateFormat, s.OamDmaSrc)
	case int(s.VRAMBank)*vramBankSize >= len(b.vram.data):
		return fmt.Errorf("%w: VRAM bank %d out of range", ErrStateFormat, s.VRAMBank)
	case s.DMAPos > oamSize || s.SerialCnt > serialBits || s.LY >= linesPerFrame:
		return fmt.Errorf("%w: unit state out of range", ErrStateFormat)
	case s.Times[eventBlit] == disabledTime:
		return fmt.Errorf("%w: blit event not armed", ErrStateFormat)
	case s.DoubleSpeed && !b.cgb:
		return fmt.Errorf("%w: double speed on a DMG machine", ErrStateFormat)
	case s.Times[eventSerial] != disabledTime && !b.validSerialPeriod(s.SerialPeriod):
		return fmt.Errorf("%w: serial period %d", ErrStateFormat, s.SerialPeriod)
	}
	return nil
}

func (b *Bus) validSerialPeriod(period uint64) bool {
	return period == serialBitCycles || b.cgb && period == serialFastBitCycles
}

// LoadState restores a buffer written by SaveState. On error nothing is
// changed.
func (b *Bus) LoadState(buf []byte) error {
	if len(buf) != b.StateSize() {
		return fmt.Errorf("%w: got=%d, want=%d", ErrStateSize, len(buf), b.StateSize())
	}
	r := bytes.NewReader(buf)
	var s stateRegisters
	if err := binary.Read(r, binary.LittleEndian, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrStateFormat, err)
	}
	if err := b.checkState(&s); err != nil {
		return err
	}
	for _, m := range b.memories() {
		if _, err := io.ReadFull(r, m); err != nil {
			// Unreachable, the size was checked.
			panic(err)
		}
	}
	b.restore(&s)
	return nil
}

func (b *Bus) restore(s *stateRegisters) {
	b.lastCycle = s.Cycle
	b.sched.times = s.Times
	b.irq = interrupts{ifReg: s.IF, ieReg: s.IE, ime: s.IME, halted: s.Halted, minIntTime: s.MinIntTime}
	b.ended = s.Ended
	b.ds = s.DoubleSpeed
	b.vrambank = int(s.VRAMBank)

	b.divLastUpdate = s.DivLastUpdate
	b.tima = tima{lastUpdate: s.TimaLastUpdate, tima: s.TIMA, tma: s.TMA, tac: s.TAC}
	b.serial.cnt = uint(s.SerialCnt)
	b.serial.period = s.SerialPeriod
	b.serial.out = s.SerialOut
	b.dma = oamDMA{
		source:     s.DMASource,
		pos:        int(s.DMAPos),
		lastUpdate: s.DMALastUpdate,
		active:     s.DMAActive,
		started:    s.DMAStarted,
	}

	b.lcd.lcdc = s.LCDC
	b.lcd.stat = s.STAT
	b.lcd.frames = s.Frames
	b.lcd.ly = lyCounter{time: s.LYTime, lineTime: lineCycles << speedShift(b.ds), ly: uint(s.LY), ds: b.ds}
	b.lcd.lyc = lycIrq{
		time:         s.LYCTime,
		lycReg:       s.LYC,
		statEnabled:  s.STAT&0x40 != 0,
		m2IrqEnabled: s.STAT&0x20 != 0,
		ds:           b.ds,
	}
	b.apu.lastUpdate = s.APULastUpdate
	b.apu.buf = b.apu.buf[:0]
	b.joypad.buttons = s.Buttons
	b.mapper.SetRegisters(s.Mapper)

	t := b.banks
	t.rombank0 = int(s.Rombank0)
	t.rombank = int(s.Rombank)
	t.rambank = int(s.Rambank)
	t.ramFlags = RAMFlags(s.RAMFlags)
	t.wrambank = int(s.Wrambank)
	t.oamDmaSrc = OamDmaSrc(s.OamDmaSrc)
	t.remap()
}
