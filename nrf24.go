package nrf24l01p

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

type HardwareConfig struct {
	// CE is the Chip Enable pin interface.
	CE Pin
	// NSS is the slave select pin interface. Active low, it frames every SPI transaction.
	NSS Pin
}

type Device struct {
	config  HardwareConfig
	conn    SPI
	nrfPort io.Closer
	mu      sync.Mutex
	state   initState
	status  Status // STATUS clocked back by the last transaction

	cmd [1]byte
	rx  [6]byte // STATUS + up to 5 data bytes
	nop [5]byte
}

// NewWithHardware binds a driver to the provided hardware interfaces.
// No pin is driven and no transaction is issued until Init is called.
func NewWithHardware(c HardwareConfig, conn SPI) (*Device, error) {
	if c.CE == nil {
		return nil, fmt.Errorf("%w: %w: CE pin not configured", ErrPkg, ErrInvalidConfig)
	}
	if c.NSS == nil {
		return nil, fmt.Errorf("%w: %w: NSS pin not configured", ErrPkg, ErrInvalidConfig)
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: %w: SPI connection not configured", ErrPkg, ErrInvalidConfig)
	}
	dev := &Device{
		config: c,
		conn:   conn,
	}
	for i := range dev.nop {
		dev.nop[i] = byte(OpNOP)
	}
	return dev, nil
}

func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fmt.Sprintf("NRF24L01+(State=%s, Status=%s)", d.state, d.status)
}

// Enabled reports whether Init completed and CE is asserted.
// This method is concurrent safe.
func (d *Device) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateEnabled
}

// Close cleans up the resources used by the NRF24L01+ driver.
// It releases CE, powers down the radio and closes the SPI port if the driver opened it.
// This method is concurrent safe.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	errs := []error{d.setCE(false)}
	d.state = stateDisabled

	if cfg, err := d.readByte(_CONFIG); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, d.writeRegister(_CONFIG, cfg&^(1<<_PWR_UP_POS)))
		globalLogger.Info("NRF24L01+ powered down.")
	}

	if d.nrfPort != nil {
		if err := d.nrfPort.Close(); err != nil {
			globalLogger.Warn("Failed to close SPI port")
			errs = append(errs, fmt.Errorf("%w: close SPI port: %w", ErrPkg, err))
		} else {
			globalLogger.Info("SPI bus closed.")
		}
		d.nrfPort = nil
	}
	return errors.Join(errs...)
}

func (d *Device) setCE(level bool) error {
	l := Low
	if level {
		l = High
	}
	if err := d.config.CE.Out(l); err != nil {
		globalLogger.Error("Failed to drive CE")
		return transportErr("drive CE "+l.String(), err)
	}
	return nil
}

// --- Register access ---

// ReadRegister reads len(buf) bytes from the register at addr.
// Reserved addresses and lengths outside the register width are rejected before any transaction.
// This method is concurrent safe.
func (d *Device) ReadRegister(addr byte, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(addr, buf)
}

// WriteRegister writes data to the register at addr, LSByte first.
// Reserved and read-only addresses and lengths outside the register width are rejected
// before any transaction.
// This method is concurrent safe.
func (d *Device) WriteRegister(addr byte, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(addr, data...)
}

// Status polls the STATUS register with a NOP command.
// This method is concurrent safe.
func (d *Device) Status() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.sendCommand(OpNOP)
	return d.status, err
}

// FlushTX clears the transmit FIFO buffer.
// This method is concurrent safe.
func (d *Device) FlushTX() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCommand(OpFlushTX)
}

// FlushRX clears the receive FIFO buffer.
// This method is concurrent safe.
func (d *Device) FlushRX() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCommand(OpFlushRX)
}

// ReuseTXPayload makes the transmitter resend the last payload while CE is high.
// This method is concurrent safe.
func (d *Device) ReuseTXPayload() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCommand(OpReuseTxPayload)
}

// FIFOStatus reads the FIFO_STATUS register.
// This method is concurrent safe.
func (d *Device) FIFOStatus() (FIFOStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readByte(_FIFO_STATUS)
	return FIFOStatus(b), err
}

// RetransmitCounters returns the number of lost packets and the number of retransmissions
// for the last sent packet.
// This method is concurrent safe.
func (d *Device) RetransmitCounters() (lostPackets, currentRetries byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	val, err := d.readByte(_OBSERVE_TX)
	if err != nil {
		return 0, 0, err
	}
	v := mustRegister(_OBSERVE_TX).Unpack(val)
	return fieldValue(v, "PLOS_CNT"), fieldValue(v, "ARC_CNT"), nil
}

// CarrierDetected returns true if a signal above -64dBm is present on the current channel.
// This method is concurrent safe.
func (d *Device) CarrierDetected() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readByte(_RPD)
	return b&0x01 != 0, err
}

func (d *Device) readEncoded() (Encoded, error) {
	var e Encoded
	for _, r := range []struct {
		addr byte
		dst  *byte
	}{
		{_CONFIG, &e.Config},
		{_SETUP_RETR, &e.SetupRetr},
		{_SETUP_AW, &e.SetupAW},
		{_RF_CH, &e.RFCh},
		{_RF_SETUP, &e.RFSetup},
	} {
		b, err := d.readByte(r.addr)
		if err != nil {
			return e, err
		}
		*r.dst = b
	}
	return e, nil
}

// ReadConfig reads back the configuration registers and decodes them.
// This method is concurrent safe.
func (d *Device) ReadConfig() (RadioConfig, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.readEncoded()
	if err != nil {
		return RadioConfig{}, err
	}
	return Decode(e)
}

// Verify reads back every register Init writes for c and compares it to the encoding.
// A mismatch usually means bad wiring or an unpowered module.
// This method is concurrent safe.
func (d *Device) Verify(c RadioConfig) error {
	enc, err := Encode(c)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var mismatches []string
	for _, writes := range initSteps(c, enc) {
		for _, w := range writes {
			got, err := d.readByte(w.addr)
			if err != nil {
				return err
			}
			if got != w.val {
				mismatches = append(mismatches, fmt.Sprintf("0x%02X: want 0x%02X, got 0x%02X", w.addr, w.val, got))
			}
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %w: %s", ErrPkg, ErrVerify, strings.Join(mismatches, "; "))
	}
	return nil
}

// RegisterValue is the content of one register as read by Dump.
type RegisterValue struct {
	Register Register
	Data     []byte
}

func (v RegisterValue) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%02X %-11s % X", v.Register.Addr, v.Register.Name, v.Data)
	if len(v.Data) == 1 {
		for _, f := range v.Register.Unpack(v.Data[0]) {
			fmt.Fprintf(&sb, " %s=%d", f.Name, f.Value)
		}
	}
	return sb.String()
}

// Dump reads every register of the map at its full width. Reserved registers are skipped.
// This method is concurrent safe.
func (d *Device) Dump() ([]RegisterValue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	regs := Registers()
	out := make([]RegisterValue, 0, len(regs))
	for _, r := range regs {
		buf := make([]byte, r.Width)
		if err := d.readRegister(r.Addr, buf); err != nil {
			return out, err
		}
		out = append(out, RegisterValue{Register: r, Data: buf})
	}
	return out, nil
}
