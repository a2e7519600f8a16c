package nrf24l01p

import "fmt"

// Opcode is the first byte of every SPI transaction.
type Opcode byte

const (
	OpReadRegister       Opcode = 0x00 // | 5-bit register address
	OpWriteRegister      Opcode = 0x20 // | 5-bit register address
	OpActivate           Opcode = 0x50
	OpReadRxPayloadWidth Opcode = 0x60
	OpReadRxPayload      Opcode = 0x61
	OpWriteTxPayload     Opcode = 0xA0
	OpWriteAckPayload    Opcode = 0xA8 // | pipe (0-5)
	OpFlushTX            Opcode = 0xE1
	OpFlushRX            Opcode = 0xE2
	OpReuseTxPayload     Opcode = 0xE3
	OpNOP                Opcode = 0xFF
)

const registerMask = 0x1F

// Standalone reports whether the opcode is sent without any data bytes.
func (o Opcode) Standalone() bool {
	switch o {
	case OpFlushTX, OpFlushRX, OpReuseTxPayload, OpNOP:
		return true
	}
	return false
}

func (o Opcode) String() string {
	switch o {
	case OpReadRegister:
		return "R_REGISTER"
	case OpWriteRegister:
		return "W_REGISTER"
	case OpActivate:
		return "ACTIVATE"
	case OpReadRxPayloadWidth:
		return "R_RX_PL_WID"
	case OpReadRxPayload:
		return "R_RX_PAYLOAD"
	case OpWriteTxPayload:
		return "W_TX_PAYLOAD"
	case OpWriteAckPayload:
		return "W_ACK_PAYLOAD"
	case OpFlushTX:
		return "FLUSH_TX"
	case OpFlushRX:
		return "FLUSH_RX"
	case OpReuseTxPayload:
		return "REUSE_TX_PL"
	case OpNOP:
		return "NOP"
	default:
		return fmt.Sprintf("Opcode(0x%02X)", byte(o))
	}
}

// --- NRF24L01+ Core Functions (SPI interaction) ---
// Every transaction pulls NSS low, performs exactly one command and releases NSS.
// Callers hold d.mu.

func checkAccess(addr byte, n int, write bool) error {
	if addr > registerMask {
		return fmt.Errorf("%w: %w: 0x%02X exceeds the 5-bit address field", ErrPkg, ErrUnknownRegister, addr)
	}
	if IsReserved(addr) {
		return fmt.Errorf("%w: %w: 0x%02X", ErrPkg, ErrReservedRegister, addr)
	}
	r, ok := LookupRegister(addr)
	if !ok {
		return fmt.Errorf("%w: %w: 0x%02X", ErrPkg, ErrUnknownRegister, addr)
	}
	if write && r.ReadOnly {
		return fmt.Errorf("%w: %w: %s is read-only", ErrPkg, ErrInvalidConfig, r.Name)
	}
	if !r.AcceptsLen(n) {
		return fmt.Errorf("%w: %w: %s takes %d-%d bytes, got %d", ErrPkg, ErrRegisterWidth, r.Name, r.MinWidth, r.Width, n)
	}
	return nil
}

func (d *Device) transaction(op string, fn func() error) (err error) {
	if err := d.config.NSS.Out(Low); err != nil {
		globalLogger.Error("Failed to assert NSS")
		return transportErr(op+": assert NSS", err)
	}
	err = fn()
	if nerr := d.config.NSS.Out(High); nerr != nil && err == nil {
		globalLogger.Error("Failed to release NSS")
		err = transportErr(op+": release NSS", nerr)
	}
	return err
}

func (d *Device) spiTransfer(op string, w, r []byte) error {
	if err := d.conn.Tx(w, r); err != nil {
		globalLogger.Error("SPI Transfer Error: " + op)
		return transportErr(op, err)
	}
	return nil
}

// sendOpcode clocks out the opcode byte and latches the STATUS byte clocked back.
func (d *Device) sendOpcode(op string, b byte) error {
	d.cmd[0] = b
	if err := d.spiTransfer(op, d.cmd[:1], d.rx[:1]); err != nil {
		return err
	}
	d.status = Status(d.rx[0])
	return nil
}

// writeRegister sends W_REGISTER|addr followed by data, LSByte first.
func (d *Device) writeRegister(addr byte, data ...byte) error {
	if err := checkAccess(addr, len(data), true); err != nil {
		return err
	}
	op := fmt.Sprintf("write register 0x%02X", addr)
	return d.transaction(op, func() error {
		if err := d.sendOpcode(op, byte(OpWriteRegister)|addr&registerMask); err != nil {
			return err
		}
		return d.spiTransfer(op, data, d.rx[1:1+len(data)])
	})
}

// readRegister sends the bare address and receives len(buf) bytes into buf.
func (d *Device) readRegister(addr byte, buf []byte) error {
	if err := checkAccess(addr, len(buf), false); err != nil {
		return err
	}
	op := fmt.Sprintf("read register 0x%02X", addr)
	return d.transaction(op, func() error {
		if err := d.sendOpcode(op, byte(OpReadRegister)|addr&registerMask); err != nil {
			return err
		}
		return d.spiTransfer(op, d.nop[:len(buf)], buf)
	})
}

func (d *Device) readByte(addr byte) (byte, error) {
	var buf [1]byte
	err := d.readRegister(addr, buf[:])
	return buf[0], err
}

// sendCommand sends a data-less command.
func (d *Device) sendCommand(o Opcode) error {
	if !o.Standalone() {
		return fmt.Errorf("%w: %w: %s", ErrPkg, ErrNotStandalone, o)
	}
	op := o.String()
	return d.transaction(op, func() error {
		return d.sendOpcode(op, byte(o))
	})
}
