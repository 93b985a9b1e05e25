package gb

const rtcRegisters = 5

// banked is a generic bank controller: it applies bank indices without
// modelling the quirks of a particular MBC.
//   0x0000-0x1FFF  RAM enable, 0x0A in the low nibble enables
//   0x2000-0x2FFF  ROM bank bits 0-7
//   0x3000-0x3FFF  ROM bank bit 8
//   0x4000-0x5FFF  RAM bank, 0x08-0x0C select an RTC register on RTC carts
//   0x6000-0x7FFF  RTC latch
type banked struct {
	romBank    int
	ramBank    int
	ramEnabled bool
	// zeroIsOne maps a ROM bank write of 0 to bank 1, as MBC1-3 do.
	zeroIsOne bool
	hasRTC    bool

	latch byte
	rtc   [rtcRegisters]byte
}

func newBanked(zeroIsOne, hasRTC bool) *banked {
	return &banked{romBank: 1, zeroIsOne: zeroIsOne, hasRTC: hasRTC}
}

func (m *banked) rtcSelected() bool {
	return m.hasRTC && m.ramBank >= 0x08 && m.ramBank < 0x08+rtcRegisters
}

func (m *banked) apply(banks Banker) {
	bank := m.romBank
	if bank == 0 && m.zeroIsOne {
		bank = 1
	}
	banks.SetRombank(bank)
	var flags RAMFlags
	if m.ramEnabled {
		flags = RAMReadEnable | RAMWriteEnable
		if m.rtcSelected() {
			flags |= RAMRTCEnable
		}
	}
	banks.SetRambank(flags, m.ramBank&0x0F)
}

func (m *banked) Write(address uint16, data byte, banks Banker) {
	switch address >> 12 {
	case 0x0, 0x1:
		m.ramEnabled = data&0x0F == 0x0A
	case 0x2:
		m.romBank = m.romBank&0x100 | int(data)
	case 0x3:
		m.romBank = m.romBank&0xFF | int(data&0x01)<<8
	case 0x4, 0x5:
		m.ramBank = int(data & 0x0F)
	case 0x6, 0x7:
		// The clock is not running, so a latch just records the sequence.
		m.latch = data
		return
	}
	m.apply(banks)
}

func (m *banked) Reset(banks Banker) {
	m.romBank = 1
	m.ramBank = 0
	m.ramEnabled = false
	m.latch = 0
	m.rtc = [rtcRegisters]byte{}
	banks.SetRombank0(0)
	m.apply(banks)
}

func (m *banked) ReadRTC() byte {
	if !m.rtcSelected() {
		return 0xFF
	}
	return m.rtc[m.ramBank-0x08]
}

func (m *banked) WriteRTC(data byte) {
	if m.rtcSelected() {
		m.rtc[m.ramBank-0x08] = data
	}
}

func (m *banked) Registers() MapperRegisters {
	return MapperRegisters{
		ROMBank:    uint16(m.romBank),
		RAMBank:    uint8(m.ramBank),
		RAMEnabled: m.ramEnabled,
		RTCLatch:   m.latch,
		RTC:        m.rtc,
	}
}

func (m *banked) SetRegisters(r MapperRegisters) {
	m.romBank = int(r.ROMBank & 0x1FF)
	m.ramBank = int(r.RAMBank & 0x0F)
	m.ramEnabled = r.RAMEnabled
	m.latch = r.RTCLatch
	m.rtc = r.RTC
}
