package gb

import (
	"fmt"

	"github.com/golang/glog"
)

const (
	vramBankSize  = 0x2000
	ioamhramSize  = 0x200
	unusableStart = 0xFEA0
	ioStart       = 0xFF00
	echoHighStart = 0xF000
	oamStart      = 0xFE00
	vramStart     = 0x8000
	cartRAMStart  = 0xA000
	wramStart     = 0xC000

	// counterRebaseLimit is the cycle count past which every stored time is
	// pulled back at the next VBlank.
	counterRebaseLimit = 0x80000000
	rebaseAlign        = 0x8000
)

// Memory is the view of the bus a CPU interpreter works against. Every
// access carries the cycle at which it happens.
type Memory interface {
	Read(address uint16, cycle uint64) byte
	Write(address uint16, data byte, cycle uint64)
	FFRead(offset byte, cycle uint64) byte
	FFWrite(offset byte, data byte, cycle uint64)
	Halt()
	EI(cycle uint64)
	DI()
	IME() bool
	Halted() bool
	Stop(cycle uint64) uint64
	NextEventTime() uint64
}

// Bus arbitrates every CPU access between the bank windows, video memory,
// the I/O registers and the cartridge, and drives the hardware units
// through the event scheduler.
//
// Bus memory map
// 0x0000 - 0x3FFF	ROM bank 0
// 0x4000 - 0x7FFF	switchable ROM bank, writes go to the mapper
// 0x8000 - 0x9FFF	VRAM (two banks on CGB)
// 0xA000 - 0xBFFF	cartridge RAM or RTC
// 0xC000 - 0xCFFF	WRAM bank 0
// 0xD000 - 0xDFFF	switchable WRAM bank
// 0xE000 - 0xFDFF	echo of 0xC000 - 0xDDFF
// 0xFE00 - 0xFE9F	OAM
// 0xFEA0 - 0xFEFF	unusable
// 0xFF00 - 0xFFFF	I/O registers, HRAM and IE
type Bus struct {
	banks    *BankTable
	mapper   Mapper
	cpu      CPU
	vram     *RAM
	ioamhram *RAM

	irq    interrupts
	sched  scheduler
	lcd    lcd
	tima   tima
	serial serial
	dma    oamDMA
	apu    apu
	joypad joypad
	video  VideoSink

	cgb      bool
	ds       bool
	vrambank int

	divLastUpdate uint64
	lastCycle     uint64
	rebaseLimit   uint64
	ended         bool
}

// NewBus creates a bus over banks, which must already be Reset for the
// cartridge geometry.
func NewBus(banks *BankTable, mapper Mapper, cpu CPU, cgb bool) *Bus {
	vramSize := vramBankSize
	if cgb {
		vramSize *= 2
	}
	b := &Bus{
		banks:       banks,
		mapper:      mapper,
		cpu:         cpu,
		vram:        NewRAM(vramSize),
		ioamhram:    NewRAM(ioamhramSize),
		cgb:         cgb,
		rebaseLimit: counterRebaseLimit,
	}
	b.apu.gen = silence{}
	b.reset()
	return b
}

// reset puts every unit into its post boot state at cycle 0.
func (b *Bus) reset() {
	b.sched.reset()
	b.irq = interrupts{}
	b.tima.reset()
	b.dma.reset()
	b.serial.cnt = 0
	b.apu.reset()
	b.ds = false
	b.vrambank = 0
	b.divLastUpdate = 0
	b.lastCycle = 0
	b.ended = false
	b.vram.clear()
	b.ioamhram.clear()
	b.banks.SetOamDmaSrc(OamDmaSrcOff)
	b.mapper.Reset(b.banks)
	b.banks.SetWrambank(1)

	io := b.ioamhram.data[ioOffset:]
	io[regP1] = 0xCF
	io[regSC] = 0x7E
	io[regTAC] = 0xF8
	io[regSVBK] = 1
	b.irq.ifReg = 0x01
	b.lcd.reset(false)
	b.lcdcWrite(0x91, 0)
	b.statWrite(0, 0)
	b.sched.set(eventTIMA, disabledTime)
	glog.V(1).Infof("Bus reset: cgb=%v blit=%d", b.cgb, b.sched.time(eventBlit))
}

// observe records cycle as the latest bus access time.
func (b *Bus) observe(cycle uint64) {
	if debugChecks && cycle < b.lastCycle {
		panic(fmt.Sprintf("bus access at cycle %d before last access at %d", cycle, b.lastCycle))
	}
	b.lastCycle = cycle
}

func (b *Bus) vramOffset(address uint16) int {
	return b.vrambank*vramBankSize + int(address-vramStart)
}

// Read reads a byte at cycle.
func (b *Bus) Read(address uint16, cycle uint64) byte {
	b.observe(cycle)
	if data, ok := b.banks.read(address); ok {
		return data
	}
	return b.nontrivialRead(address, cycle)
}

func (b *Bus) nontrivialRead(address uint16, cycle uint64) byte {
	if glog.V(3) {
		glog.Infof("Slow path read: address=0x%04x cycle=%d", address, cycle)
	}
	switch {
	case address < vramStart:
		b.updateOamDma(cycle)
		return b.dmaOpenBus()
	case address < cartRAMStart:
		return b.vram.read(b.vramOffset(address))
	case address < wramStart:
		if b.banks.contended(address, false) {
			b.updateOamDma(cycle)
			return b.dmaOpenBus()
		}
		if rtc, ok := b.mapper.(RTCMapper); ok && b.banks.ramFlags&RAMRTCEnable != 0 {
			return rtc.ReadRTC()
		}
		return 0xFF
	case address < oamStart:
		if b.banks.contended(address, false) {
			b.updateOamDma(cycle)
			return b.dmaOpenBus()
		}
		return *b.banks.wramAt(address)
	case address < unusableStart:
		b.updateOamDma(cycle)
		if b.dma.running() {
			return 0xFF
		}
		return b.ioamhram.data[address-oamStart]
	case address < ioStart:
		return 0xFF
	}
	return b.FFRead(byte(address), cycle)
}

// Write writes a byte at cycle.
func (b *Bus) Write(address uint16, data byte, cycle uint64) {
	b.observe(cycle)
	if b.banks.write(address, data) {
		return
	}
	b.nontrivialWrite(address, data, cycle)
}

func (b *Bus) nontrivialWrite(address uint16, data byte, cycle uint64) {
	if glog.V(3) {
		glog.Infof("Slow path write: address=0x%04x data=0x%02x cycle=%d", address, data, cycle)
	}
	switch {
	case address < vramStart:
		b.mapper.Write(address, data, b.banks)
	case address < cartRAMStart:
		b.vram.write(b.vramOffset(address), data)
	case address < wramStart:
		if b.banks.contended(address, true) {
			return
		}
		if rtc, ok := b.mapper.(RTCMapper); ok && b.banks.ramFlags&RAMRTCEnable != 0 {
			rtc.WriteRTC(data)
		}
	case address < oamStart:
		if b.banks.contended(address, true) {
			return
		}
		*b.banks.wramAt(address) = data
	case address < unusableStart:
		b.updateOamDma(cycle)
		if !b.dma.running() {
			b.ioamhram.data[address-oamStart] = data
		}
	case address < ioStart:
	default:
		b.FFWrite(byte(address), data, cycle)
	}
}

// Event dispatches the earliest due hardware event. cycle is advanced to
// the trigger time if it is behind it. It returns the cycle after the
// event, which may be pulled back by counter rebasing, and the trigger time
// of the next event.
func (b *Bus) Event(cycle uint64) (uint64, uint64) {
	id, t := b.sched.next()
	if cycle < t {
		cycle = t
	}
	b.observe(cycle)
	switch id {
	case eventEnd:
		b.ended = true
		b.sched.set(eventEnd, disabledTime)
	case eventBlit:
		b.blitEvent(t)
		if cycle >= b.rebaseLimit {
			cycle = b.resetCounters(cycle)
		}
	case eventSerial:
		b.serialEvent(t)
	case eventOAM:
		b.oamEvent(t)
	case eventTIMA:
		b.timaEvent(t)
	case eventLYC:
		b.lycEvent(t)
	case eventInterrupts:
		cycle = b.serviceInterrupts(cycle)
		b.lastCycle = cycle
	}
	return cycle, b.sched.minTime()
}

// NextEventTime returns the trigger time of the earliest armed event.
func (b *Bus) NextEventTime() uint64 {
	return b.sched.minTime()
}

// SetEndTime arms the end event inc cycles after cycle.
func (b *Bus) SetEndTime(cycle, inc uint64) {
	b.ended = false
	b.sched.set(eventEnd, cycle+inc)
}

// Ended reports whether the end event has fired.
func (b *Bus) Ended() bool {
	return b.ended
}

// Stop executes the STOP instruction. On CGB with KEY1 armed it switches
// CPU speed and returns the cycle after the switch.
func (b *Bus) Stop(cycle uint64) uint64 {
	key1 := &b.ioamhram.data[ioOffset+regKEY1]
	if !b.cgb || *key1&0x01 == 0 {
		glog.V(1).Infof("STOP without speed switch at cycle %d", cycle)
		return cycle
	}
	b.speedChange(cycle)
	*key1 &^= 0x01
	glog.V(1).Infof("Speed switch: double=%v cycle=%d", b.ds, cycle)
	return cycle
}

// resetCounters pulls every stored time back by a frame aligned amount so
// the counter stays far from overflow. Returns the rebased cycle.
func (b *Bus) resetCounters(cycle uint64) uint64 {
	b.updateTima(cycle)
	b.updateOamDma(cycle)
	b.fillSoundBuffer(cycle)
	// ly.time only moves on reads, bring it to cycle so it stays above dec.
	if b.lcd.enabled() {
		b.lcd.ly.update(cycle)
	} else {
		b.lcd.ly.reset(cycle, b.ds)
	}
	dec := cycle&^(rebaseAlign-1) - rebaseAlign
	b.sched.rebase(dec)
	b.divLastUpdate -= dec
	b.tima.lastUpdate -= dec
	if b.dma.active {
		b.dma.lastUpdate -= dec
	}
	b.lcd.ly.time -= dec
	if b.lcd.lyc.time != disabledTime {
		b.lcd.lyc.time -= dec
	}
	if b.irq.minIntTime > dec {
		b.irq.minIntTime -= dec
	} else {
		b.irq.minIntTime = 0
	}
	b.apu.lastUpdate -= dec
	b.lastCycle = cycle - dec
	glog.V(1).Infof("Counters rebased by %d cycles", dec)
	return cycle - dec
}

// SetButtons updates the joypad and requests the joypad interrupt on a new
// press.
func (b *Bus) SetButtons(buttons Buttons, cycle uint64) {
	if b.joypad.set(buttons) {
		b.flagIrq(irqJoypad, cycle)
	}
}

// Peek reads address the way the DMA engine sees it, without side effects.
// Used by the debug console.
func (b *Bus) Peek(address uint16) byte {
	switch {
	case address >= vramStart && address < cartRAMStart:
		return b.vram.read(b.vramOffset(address))
	case address >= echoHighStart && address < oamStart:
		return *b.banks.wramAt(address)
	case address >= oamStart && address < unusableStart:
		return b.ioamhram.data[address-oamStart]
	case address >= ioStart:
		return b.ioamhram.data[ioOffset+int(address-ioStart)]
	}
	return b.banks.peek(address)
}

// Banks returns the bank table.
func (b *Bus) Banks() *BankTable {
	return b.banks
}

// CGB reports whether the bus runs in CGB mode.
func (b *Bus) CGB() bool {
	return b.cgb
}
