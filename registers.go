package nrf24l01p

import (
	"fmt"
	"slices"
	"strconv"
)

// NRF24L01+ Register Addresses
const (
	_CONFIG      = 0x00
	_EN_AA       = 0x01 // Auto Ack
	_EN_RXADDR   = 0x02
	_SETUP_AW    = 0x03
	_SETUP_RETR  = 0x04
	_RF_CH       = 0x05
	_RF_SETUP    = 0x06
	_STATUS      = 0x07
	_OBSERVE_TX  = 0x08
	_RPD         = 0x09
	_RX_ADDR_P0  = 0x0A // 5-byte max, LSByte first
	_RX_ADDR_P1  = 0x0B // 5-byte max, LSByte first
	_RX_ADDR_P2  = 0x0C // LSB only, MSBytes mirror RX_ADDR_P1
	_RX_ADDR_P3  = 0x0D
	_RX_ADDR_P4  = 0x0E
	_RX_ADDR_P5  = 0x0F
	_TX_ADDR     = 0x10 // 5-byte max, LSByte first
	_RX_PW_P0    = 0x11 // Receive Payload Width for Data Pipe 0
	_FIFO_STATUS = 0x17

	_RESERVED_FIRST = 0x18
	_RESERVED_LAST  = 0x1B

	_DYNPD   = 0x1C // Dynamic Payload Register
	_FEATURE = 0x1D // Feature Register
)

// CONFIG bit positions.
const (
	_PRIM_RX_POS     = 0
	_PWR_UP_POS      = 1
	_CRCO_POS        = 2
	_EN_CRC_POS      = 3
	_MASK_MAX_RT_POS = 4
	_MASK_TX_DS_POS  = 5
	_MASK_RX_DR_POS  = 6
)

// SETUP_RETR, RF_SETUP and EN_* positions.
const (
	_ARC_POS        = 0
	_ARD_POS        = 4
	_RF_PWR_POS     = 1
	_RF_DR_HIGH_POS = 3
	_PLL_LOCK_POS   = 4
	_RF_DR_LOW_POS  = 5
	_CONT_WAVE_POS  = 7
	_P0_POS         = 0
)

// Field is a named bit range inside a register byte together with its legal values.
type Field struct {
	Name  string
	Pos   uint8
	Width uint8
	Min   uint8
	Max   uint8
}

// Mask returns the bits occupied by the field.
func (f Field) Mask() byte {
	return byte((1<<f.Width)-1) << f.Pos
}

// Legal reports whether v belongs to the field's legal value set.
func (f Field) Legal(v uint8) bool {
	return v >= f.Min && v <= f.Max
}

// FieldValue pairs a field name with the value to pack into it.
type FieldValue struct {
	Name  string
	Value uint8
}

// Register describes one addressable register of the chip.
type Register struct {
	Addr byte
	Name string
	// Width is the register size in bytes. Address registers accept
	// any length between MinWidth and Width, written LSByte first.
	Width    int
	MinWidth int
	ReadOnly bool
	Fields   []Field
}

// Field returns the named field of the register.
func (r Register) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// AcceptsLen reports whether n data bytes fit the register.
func (r Register) AcceptsLen(n int) bool {
	return n >= r.MinWidth && n <= r.Width
}

// Pack validates every value against its field and combines them into one register byte.
// Fields not named keep their zero value.
func (r Register) Pack(values ...FieldValue) (byte, error) {
	var out, used byte
	for _, v := range values {
		f, ok := r.Field(v.Name)
		if !ok {
			return 0, configErr(r.Name+"."+v.Name, int(v.Value), "no such field")
		}
		if !f.Legal(v.Value) {
			return 0, configErr(r.Name+"."+v.Name, int(v.Value),
				fmt.Sprintf("must be between %d and %d", f.Min, f.Max))
		}
		if used&f.Mask() != 0 {
			return 0, configErr(r.Name+"."+v.Name, int(v.Value), "overlaps a field already packed")
		}
		used |= f.Mask()
		out |= v.Value << f.Pos
	}
	return out, nil
}

// Unpack splits a register byte into its field values, in table order.
func (r Register) Unpack(b byte) []FieldValue {
	out := make([]FieldValue, 0, len(r.Fields))
	for _, f := range r.Fields {
		out = append(out, FieldValue{Name: f.Name, Value: (b & f.Mask()) >> f.Pos})
	}
	return out
}

func bit(name string, pos uint8) Field {
	return Field{Name: name, Pos: pos, Width: 1, Max: 1}
}

func pipeBits(prefix string) []Field {
	fields := make([]Field, 6)
	for i := range fields {
		fields[i] = bit(prefix+strconv.Itoa(i), uint8(i))
	}
	return fields
}

func byteReg(addr byte, name string, fields ...Field) Register {
	return Register{Addr: addr, Name: name, Width: 1, MinWidth: 1, Fields: fields}
}

func addrReg(addr byte, name string) Register {
	return Register{Addr: addr, Name: name, Width: 5, MinWidth: 3}
}

func readOnly(r Register) Register {
	r.ReadOnly = true
	return r
}

func rxPayloadWidth(pipe int) Register {
	return byteReg(byte(_RX_PW_P0+pipe), "RX_PW_P"+strconv.Itoa(pipe), Field{Name: "RX_PW", Width: 6, Max: 32})
}

// registerMap holds every addressable register in address order.
// 0x18-0x1B are reserved for chip test and deliberately absent.
var registerMap = []Register{
	byteReg(_CONFIG, "CONFIG",
		bit("PRIM_RX", _PRIM_RX_POS),
		bit("PWR_UP", _PWR_UP_POS),
		bit("CRCO", _CRCO_POS),
		bit("EN_CRC", _EN_CRC_POS),
		bit("MASK_MAX_RT", _MASK_MAX_RT_POS),
		bit("MASK_TX_DS", _MASK_TX_DS_POS),
		bit("MASK_RX_DR", _MASK_RX_DR_POS),
	),
	byteReg(_EN_AA, "EN_AA", pipeBits("ENAA_P")...),
	byteReg(_EN_RXADDR, "EN_RXADDR", pipeBits("ERX_P")...),
	// 0b00 is the illegal encoding.
	byteReg(_SETUP_AW, "SETUP_AW", Field{Name: "AW", Width: 2, Min: 1, Max: 3}),
	byteReg(_SETUP_RETR, "SETUP_RETR",
		Field{Name: "ARC", Pos: _ARC_POS, Width: 4, Max: 15},
		Field{Name: "ARD", Pos: _ARD_POS, Width: 4, Max: 15},
	),
	// Bit 7 is reserved and must stay zero.
	byteReg(_RF_CH, "RF_CH", Field{Name: "RF_CH", Width: 7, Max: 63}),
	byteReg(_RF_SETUP, "RF_SETUP",
		Field{Name: "RF_PWR", Pos: _RF_PWR_POS, Width: 2, Max: 3},
		bit("RF_DR_HIGH", _RF_DR_HIGH_POS),
		bit("PLL_LOCK", _PLL_LOCK_POS),
		bit("RF_DR_LOW", _RF_DR_LOW_POS),
		bit("CONT_WAVE", _CONT_WAVE_POS),
	),
	byteReg(_STATUS, "STATUS",
		bit("TX_FULL", 0),
		Field{Name: "RX_P_NO", Pos: 1, Width: 3, Max: 7},
		bit("MAX_RT", 4),
		bit("TX_DS", 5),
		bit("RX_DR", 6),
	),
	readOnly(byteReg(_OBSERVE_TX, "OBSERVE_TX",
		Field{Name: "ARC_CNT", Width: 4, Max: 15},
		Field{Name: "PLOS_CNT", Pos: 4, Width: 4, Max: 15},
	)),
	readOnly(byteReg(_RPD, "RPD", bit("RPD", 0))),
	addrReg(_RX_ADDR_P0, "RX_ADDR_P0"),
	addrReg(_RX_ADDR_P1, "RX_ADDR_P1"),
	byteReg(_RX_ADDR_P2, "RX_ADDR_P2"),
	byteReg(_RX_ADDR_P3, "RX_ADDR_P3"),
	byteReg(_RX_ADDR_P4, "RX_ADDR_P4"),
	byteReg(_RX_ADDR_P5, "RX_ADDR_P5"),
	addrReg(_TX_ADDR, "TX_ADDR"),
	rxPayloadWidth(0),
	rxPayloadWidth(1),
	rxPayloadWidth(2),
	rxPayloadWidth(3),
	rxPayloadWidth(4),
	rxPayloadWidth(5),
	readOnly(byteReg(_FIFO_STATUS, "FIFO_STATUS",
		bit("RX_EMPTY", 0),
		bit("RX_FULL", 1),
		bit("TX_EMPTY", 4),
		bit("TX_FULL", 5),
		bit("TX_REUSE", 6),
	)),
	byteReg(_DYNPD, "DYNPD", pipeBits("DPL_P")...),
	byteReg(_FEATURE, "FEATURE",
		bit("EN_DYN_ACK", 0),
		bit("EN_ACK_PAY", 1),
		bit("EN_DPL", 2),
	),
}

// IsReserved reports whether addr falls in the reserved test range 0x18-0x1B.
func IsReserved(addr byte) bool {
	return addr >= _RESERVED_FIRST && addr <= _RESERVED_LAST
}

// LookupRegister returns the register at addr.
// Reserved and undefined addresses are not found.
func LookupRegister(addr byte) (Register, bool) {
	for _, r := range registerMap {
		if r.Addr == addr {
			r.Fields = slices.Clone(r.Fields)
			return r, true
		}
	}
	return Register{}, false
}

// Registers returns a copy of the register map in address order.
func Registers() []Register {
	out := make([]Register, len(registerMap))
	for i, r := range registerMap {
		r.Fields = slices.Clone(r.Fields)
		out[i] = r
	}
	return out
}

func mustRegister(addr byte) Register {
	r, ok := LookupRegister(addr)
	if !ok {
		panic(fmt.Sprintf("nrf24l01p: register 0x%02X missing from map", addr))
	}
	return r
}

func fieldValue(fields []FieldValue, name string) uint8 {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return 0
}

func flags(f string, mask, b byte) string {
	buf := make([]byte, len(f))
	m := byte(0x80)
	for i := range buf {
		if f[i] == '+' {
			for mask&m == 0 {
				m >>= 1
			}
			if b&m == 0 {
				buf[i] = '-'
			} else {
				buf[i] = '+'
			}
			m >>= 1
		} else {
			buf[i] = f[i]
		}
	}
	return string(buf)
}

// Status is the value of the STATUS register, clocked out as the first byte of every transaction.
type Status byte

const (
	StatusTXFull     Status = 1 << 0 // TX FIFO full
	StatusMaxRetries Status = 1 << 4 // MAX_RT
	StatusDataSent   Status = 1 << 5 // TX_DS
	StatusDataReady  Status = 1 << 6 // RX_DR
)

// RxPipe returns the data pipe of the payload available in the RX FIFO or -1 if it is empty.
func (s Status) RxPipe() int {
	n := int(s>>1) & 0x07
	if n > 5 {
		return -1
	}
	return n
}

func (s Status) String() string {
	return flags("RxDR+ TxDS+ MaxRT+ TxFull+ RxPipe:", 0x71, byte(s)) + strconv.Itoa(s.RxPipe())
}

// FIFOStatus is the value of the FIFO_STATUS register.
type FIFOStatus byte

const (
	FIFORxEmpty FIFOStatus = 1 << 0
	FIFORxFull  FIFOStatus = 1 << 1
	FIFOTxEmpty FIFOStatus = 1 << 4
	FIFOTxFull  FIFOStatus = 1 << 5
	FIFOTxReuse FIFOStatus = 1 << 6
)

func (f FIFOStatus) String() string {
	return flags("TxReuse+ TxFull+ TxEmpty+ RxFull+ RxEmpty+", 0x73, byte(f))
}
