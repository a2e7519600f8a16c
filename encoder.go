package nrf24l01p

import "fmt"

type (
	Mode      byte
	DataRate  byte
	PALevel   byte
	CRCLength byte
)

const (
	// ModeTransmitter configures the chip as primary transmitter (PRIM_RX=0).
	ModeTransmitter Mode = iota
	// ModeReceiver configures the chip as primary receiver (PRIM_RX=1).
	ModeReceiver
)

func (m Mode) String() string {
	switch m {
	case ModeTransmitter:
		return "PTX"
	case ModeReceiver:
		return "PRX"
	default:
		return "unknown"
	}
}

const (
	// DataRate250kbps represents a data rate of 250kbps
	DataRate250kbps DataRate = iota
	// DataRate1mbps represents a data rate of 1mbps
	DataRate1mbps
	// DataRate2mbps represents a data rate of 2mbps
	DataRate2mbps
)

func (d DataRate) String() string {
	switch d {
	case DataRate250kbps:
		return "250kbps"
	case DataRate1mbps:
		return "1mbps"
	case DataRate2mbps:
		return "2mbps"
	default:
		return "unknown"
	}
}

const (
	// PALevelMin represents a power amplifier level of -18dBm
	PALevelMin PALevel = iota
	// PALevelLow represents a power amplifier level of -12dBm
	PALevelLow
	// PALevelHigh represents a power amplifier level of -6dBm
	PALevelHigh
	// PALevelMax represents a power amplifier level of 0dBm
	PALevelMax
)

func (p PALevel) String() string {
	switch p {
	case PALevelMin:
		return "-18dBm"
	case PALevelLow:
		return "-12dBm"
	case PALevelHigh:
		return "-6dBm"
	case PALevelMax:
		return "0dBm"
	default:
		return "unknown"
	}
}

const (
	// CRCLengthDisabled disables CRC
	CRCLengthDisabled CRCLength = iota
	// CRCLength8 enables 8-bit CRC
	CRCLength8
	// CRCLength16 enables 16-bit CRC
	CRCLength16
)

func (c CRCLength) String() string {
	switch c {
	case CRCLengthDisabled:
		return "disabled"
	case CRCLength8:
		return "8bit"
	case CRCLength16:
		return "16bit"
	default:
		return "unknown"
	}
}

const (
	minRetransmitDelay = 250
	maxRetransmitDelay = 4000
	retransmitStep     = 250
)

// RadioConfig is the logical configuration applied by Init.
// It is read once and never retained by the driver.
type RadioConfig struct {
	// Mode selects primary transmitter or primary receiver.
	Mode Mode
	// CRCLength sets the CRC length. CRCLength8 sets EN_CRC with one-byte encoding.
	CRCLength CRCLength
	// MaskRxDataReady, MaskTxDataSent and MaskMaxRetransmit keep the matching
	// interrupt off the IRQ pin when true.
	MaskRxDataReady   bool
	MaskTxDataSent    bool
	MaskMaxRetransmit bool
	// AddressWidth sets the address width in bytes.
	// Range: 3 to 5.
	// Defaults to 5 if not provided.
	AddressWidth byte
	// AutoRetransmitDelay sets the auto-retransmit delay.
	// The value is in microseconds and must be a multiple of 250.
	// Range: 250 to 4000.
	// Defaults to 250 if not provided. Only written in ModeTransmitter.
	AutoRetransmitDelay uint16
	// AutoRetransmitCount sets the auto-retransmit count.
	// Range: 0 to 15. Only written in ModeTransmitter.
	AutoRetransmitCount byte
	// ChannelNumber selects the RF channel, 2400 + ChannelNumber MHz.
	// Range: 0 to 63.
	ChannelNumber byte
	// PALevel sets the power amplifier level.
	PALevel PALevel
	// DataRate sets the air data rate.
	DataRate DataRate
	// ForcePLLLock and ContinuousWave are chip test modes. Leave them off.
	ForcePLLLock   bool
	ContinuousWave bool
}

// Encoded holds one packed byte per register written by Init.
type Encoded struct {
	Config    byte
	SetupRetr byte
	SetupAW   byte
	RFCh      byte
	RFSetup   byte
}

// Values returns the encoding as register address to byte value pairs.
func (e Encoded) Values() map[byte]byte {
	return map[byte]byte{
		_CONFIG:     e.Config,
		_SETUP_RETR: e.SetupRetr,
		_SETUP_AW:   e.SetupAW,
		_RF_CH:      e.RFCh,
		_RF_SETUP:   e.RFSetup,
	}
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// EncodeRetransmitDelay maps a delay in microseconds to the 4-bit ARD field.
func EncodeRetransmitDelay(us uint16) (uint8, error) {
	if us < minRetransmitDelay || us > maxRetransmitDelay || us%retransmitStep != 0 {
		return 0, configErr("AutoRetransmitDelay", int(us), "must be a multiple of 250 between 250 and 4000")
	}
	return uint8(us/retransmitStep - 1), nil
}

func dataRateBits(r DataRate) (low, high uint8, err error) {
	switch r {
	case DataRate250kbps:
		return 1, 0, nil
	case DataRate1mbps:
		return 0, 0, nil
	case DataRate2mbps:
		return 0, 1, nil
	}
	return 0, 0, configErr("DataRate", int(r), "unknown data rate")
}

func (c RadioConfig) withDefaults() RadioConfig {
	if c.AddressWidth == 0 {
		c.AddressWidth = 5
	}
	if c.AutoRetransmitDelay == 0 {
		c.AutoRetransmitDelay = minRetransmitDelay
	}
	return c
}

// Encode validates c and packs it into register values. It performs no I/O.
// PWR_UP is always set.
func Encode(c RadioConfig) (Encoded, error) {
	c = c.withDefaults()
	var (
		e   Encoded
		err error
	)

	if c.Mode > ModeReceiver {
		return e, configErr("Mode", int(c.Mode), "unknown mode")
	}
	var crc, crco uint8
	switch c.CRCLength {
	case CRCLengthDisabled:
	case CRCLength8:
		crc = 1
	case CRCLength16:
		crc, crco = 1, 1
	default:
		return e, configErr("CRCLength", int(c.CRCLength), "unknown CRC length")
	}
	e.Config, err = mustRegister(_CONFIG).Pack(
		FieldValue{"PRIM_RX", uint8(c.Mode)},
		FieldValue{"PWR_UP", 1},
		FieldValue{"CRCO", crco},
		FieldValue{"EN_CRC", crc},
		FieldValue{"MASK_MAX_RT", b2u(c.MaskMaxRetransmit)},
		FieldValue{"MASK_TX_DS", b2u(c.MaskTxDataSent)},
		FieldValue{"MASK_RX_DR", b2u(c.MaskRxDataReady)},
	)
	if err != nil {
		return e, err
	}

	ard, err := EncodeRetransmitDelay(c.AutoRetransmitDelay)
	if err != nil {
		return e, err
	}
	if c.AutoRetransmitCount > 15 {
		return e, configErr("AutoRetransmitCount", int(c.AutoRetransmitCount), "must be between 0 and 15")
	}
	e.SetupRetr, err = mustRegister(_SETUP_RETR).Pack(
		FieldValue{"ARC", c.AutoRetransmitCount},
		FieldValue{"ARD", ard},
	)
	if err != nil {
		return e, err
	}

	if c.AddressWidth < 3 || c.AddressWidth > 5 {
		return e, configErr("AddressWidth", int(c.AddressWidth), "must be 3, 4 or 5")
	}
	if e.SetupAW, err = mustRegister(_SETUP_AW).Pack(FieldValue{"AW", c.AddressWidth - 2}); err != nil {
		return e, err
	}

	if e.RFCh, err = mustRegister(_RF_CH).Pack(FieldValue{"RF_CH", c.ChannelNumber}); err != nil {
		return e, err
	}

	if c.PALevel > PALevelMax {
		return e, configErr("PALevel", int(c.PALevel), "unknown power level")
	}
	low, high, err := dataRateBits(c.DataRate)
	if err != nil {
		return e, err
	}
	e.RFSetup, err = mustRegister(_RF_SETUP).Pack(
		FieldValue{"RF_PWR", uint8(c.PALevel)},
		FieldValue{"RF_DR_HIGH", high},
		FieldValue{"PLL_LOCK", b2u(c.ForcePLLLock)},
		FieldValue{"RF_DR_LOW", low},
		FieldValue{"CONT_WAVE", b2u(c.ContinuousWave)},
	)
	return e, err
}

// Control is the decoded CONFIG register.
type Control struct {
	PowerUp           bool
	Mode              Mode
	CRCLength         CRCLength
	MaskRxDataReady   bool
	MaskTxDataSent    bool
	MaskMaxRetransmit bool
}

// DecodeControl unpacks a CONFIG byte.
func DecodeControl(b byte) Control {
	v := mustRegister(_CONFIG).Unpack(b)
	c := Control{
		PowerUp:           fieldValue(v, "PWR_UP") == 1,
		Mode:              Mode(fieldValue(v, "PRIM_RX")),
		MaskRxDataReady:   fieldValue(v, "MASK_RX_DR") == 1,
		MaskTxDataSent:    fieldValue(v, "MASK_TX_DS") == 1,
		MaskMaxRetransmit: fieldValue(v, "MASK_MAX_RT") == 1,
	}
	if fieldValue(v, "EN_CRC") == 1 {
		c.CRCLength = CRCLength8 + CRCLength(fieldValue(v, "CRCO"))
	}
	return c
}

// DecodeRetry unpacks a SETUP_RETR byte into a delay in microseconds and a count.
func DecodeRetry(b byte) (delay uint16, count byte) {
	v := mustRegister(_SETUP_RETR).Unpack(b)
	return (uint16(fieldValue(v, "ARD")) + 1) * retransmitStep, fieldValue(v, "ARC")
}

// DecodeAddressWidth unpacks a SETUP_AW byte into a width in bytes.
func DecodeAddressWidth(b byte) (byte, error) {
	aw := fieldValue(mustRegister(_SETUP_AW).Unpack(b), "AW")
	if aw == 0 {
		return 0, configErr("SETUP_AW.AW", 0, "illegal encoding")
	}
	return aw + 2, nil
}

// RFSetup is the decoded RF_SETUP register.
type RFSetup struct {
	PALevel        PALevel
	DataRate       DataRate
	ForcePLLLock   bool
	ContinuousWave bool
}

// DecodeRFSetup unpacks an RF_SETUP byte.
// RF_DR_LOW and RF_DR_HIGH both set is reserved and rejected.
func DecodeRFSetup(b byte) (RFSetup, error) {
	v := mustRegister(_RF_SETUP).Unpack(b)
	s := RFSetup{
		PALevel:        PALevel(fieldValue(v, "RF_PWR")),
		ForcePLLLock:   fieldValue(v, "PLL_LOCK") == 1,
		ContinuousWave: fieldValue(v, "CONT_WAVE") == 1,
	}
	switch low, high := fieldValue(v, "RF_DR_LOW"), fieldValue(v, "RF_DR_HIGH"); {
	case low == 1 && high == 1:
		return s, configErr("RF_SETUP", int(b), "reserved data rate combination")
	case low == 1:
		s.DataRate = DataRate250kbps
	case high == 1:
		s.DataRate = DataRate2mbps
	default:
		s.DataRate = DataRate1mbps
	}
	return s, nil
}

// Decode rebuilds a RadioConfig from the register values produced by Encode.
func Decode(e Encoded) (RadioConfig, error) {
	ctl := DecodeControl(e.Config)
	if !ctl.PowerUp {
		return RadioConfig{}, configErr("CONFIG.PWR_UP", 0, "chip is powered down")
	}
	aw, err := DecodeAddressWidth(e.SetupAW)
	if err != nil {
		return RadioConfig{}, err
	}
	rf, err := DecodeRFSetup(e.RFSetup)
	if err != nil {
		return RadioConfig{}, err
	}
	delay, count := DecodeRetry(e.SetupRetr)
	return RadioConfig{
		Mode:                ctl.Mode,
		CRCLength:           ctl.CRCLength,
		MaskRxDataReady:     ctl.MaskRxDataReady,
		MaskTxDataSent:      ctl.MaskTxDataSent,
		MaskMaxRetransmit:   ctl.MaskMaxRetransmit,
		AddressWidth:        aw,
		AutoRetransmitDelay: delay,
		AutoRetransmitCount: count,
		ChannelNumber:       e.RFCh & 0x7F,
		PALevel:             rf.PALevel,
		DataRate:            rf.DataRate,
		ForcePLLLock:        rf.ForcePLLLock,
		ContinuousWave:      rf.ContinuousWave,
	}, nil
}

func (c RadioConfig) String() string {
	return fmt.Sprintf("RadioConfig(Mode=%s, Channel=%d, DataRate=%s, PALevel=%s, CRC=%s, AddressWidth=%d, ARD=%dus, ARC=%d)",
		c.Mode, c.ChannelNumber, c.DataRate, c.PALevel, c.CRCLength,
		c.AddressWidth, c.AutoRetransmitDelay, c.AutoRetransmitCount)
}
