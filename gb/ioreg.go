package gb

// ioOffset is where the 0xFF00 page starts inside the OAM/IO/HRAM store.
const ioOffset = 0x100

// Register offsets in the 0xFF00 page.
const (
	regP1   = 0x00
	regSB   = 0x01
	regSC   = 0x02
	regDIV  = 0x04
	regTIMA = 0x05
	regTMA  = 0x06
	regTAC  = 0x07
	regIF   = 0x0F
	regNR10 = 0x10
	regWave = 0x30
	regLCDC = 0x40
	regSTAT = 0x41
	regLY   = 0x44
	regLYC  = 0x45
	regDMA  = 0x46
	regKEY1 = 0x4D
	regVBK  = 0x4F
	regSVBK = 0x70
	regHRAM = 0x80
	regIE   = 0xFF
)

func isSoundReg(offset byte) bool {
	return offset >= regNR10 && offset < regWave+0x10
}

// FFRead reads 0xFF00+offset: I/O registers, HRAM and IE.
func (b *Bus) FFRead(offset byte, cycle uint64) byte {
	if offset >= regHRAM && offset != regIE {
		return b.ioamhram.data[ioOffset+int(offset)]
	}
	switch offset {
	case regP1:
		return b.joypad.read(b.ioamhram.data[ioOffset+regP1])
	case regSB, regSC:
		b.updateSerial(cycle)
	case regDIV:
		return b.readDIV(cycle)
	case regTIMA:
		return b.readTIMA(cycle)
	case regIF:
		return b.irq.ifReg | ifUnusedBits
	case regSTAT:
		return b.readSTAT(cycle)
	case regLY:
		return b.readLY(cycle)
	case regKEY1:
		if !b.cgb {
			return 0xFF
		}
		key1 := b.ioamhram.data[ioOffset+regKEY1]&0x01 | 0x7E
		if b.ds {
			key1 |= 0x80
		}
		return key1
	case regVBK:
		if !b.cgb {
			return 0xFF
		}
		return 0xFE | byte(b.vrambank)
	case regSVBK:
		if !b.cgb {
			return 0xFF
		}
		return 0xF8 | b.ioamhram.data[ioOffset+regSVBK]
	case regIE:
		return b.irq.ieReg
	}
	if isSoundReg(offset) {
		b.fillSoundBuffer(cycle)
	}
	return b.ioamhram.data[ioOffset+int(offset)]
}

// FFWrite writes 0xFF00+offset.
func (b *Bus) FFWrite(offset byte, data byte, cycle uint64) {
	if offset >= regHRAM && offset != regIE {
		b.ioamhram.data[ioOffset+int(offset)] = data
		return
	}
	switch offset {
	case regP1:
		b.ioamhram.data[ioOffset+regP1] = data&0x30 | 0xCF
	case regSB:
		b.updateSerial(cycle)
		b.ioamhram.data[ioOffset+regSB] = data
	case regSC:
		b.scWrite(data, cycle)
	case regDIV:
		b.divWrite(cycle)
	case regTIMA, regTMA, regTAC:
		b.timaWrite(offset, data, cycle)
	case regIF:
		b.irq.ifReg = data & 0x1F
		b.updateIrqEvent(cycle)
	case regLCDC:
		b.lcdcWrite(data, cycle)
	case regSTAT:
		b.statWrite(data, cycle)
	case regLY:
	case regLYC:
		b.lycWrite(data, cycle)
	case regDMA:
		b.dmaWrite(data, cycle)
	case regKEY1:
		if b.cgb {
			b.ioamhram.data[ioOffset+regKEY1] = data & 0x01
		}
	case regVBK:
		if b.cgb {
			b.vrambank = int(data & 0x01)
		}
	case regSVBK:
		if b.cgb {
			b.ioamhram.data[ioOffset+regSVBK] = data & 0x07
			b.banks.SetWrambank(int(data))
		}
	case regIE:
		b.irq.ieReg = data
		b.ioamhram.data[ioOffset+regIE] = data
		b.updateIrqEvent(cycle)
	default:
		if isSoundReg(offset) {
			b.fillSoundBuffer(cycle)
		}
		b.ioamhram.data[ioOffset+int(offset)] = data
	}
}
