//go:build !tinygo

package nrf24l01p

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// realPin wraps a gpio.PinIO to satisfy the Pin interface.
type realPin struct {
	gpio.PinIO
}

func (p *realPin) Out(l Level) error {
	if l == High {
		return p.PinIO.Out(gpio.High)
	}
	return p.PinIO.Out(gpio.Low)
}

func (p *realPin) Read() Level {
	if p.PinIO.Read() == gpio.High {
		return High
	}
	return Low
}

// Config holds the configuration for the Linux/periph.io driver.
type Config struct {
	RadioConfig
	// CEPin is the GPIO pin number (BCM numbering) for the Chip Enable (CE) pin.
	// Defaults to 25 if not provided.
	CEPin int
	// NSSPin is the GPIO pin number (BCM numbering) for the slave select (CSN) pin.
	// The driver toggles it around every transaction; the SPI controller's own
	// chip select is not used.
	// Defaults to 8 if not provided.
	NSSPin int
	// SpiBusPath is the path to the SPI bus (e.g., "/dev/spidev0.0").
	// Defaults to "/dev/spidev0.0" if not provided.
	SpiBusPath string
	// SpiClockHz is the SPI clock frequency in Hz.
	// Defaults to 1000000 (1MHz) if not provided.
	SpiClockHz int
}

func (c Config) withDefaults() Config {
	if c.SpiBusPath == "" {
		c.SpiBusPath = "/dev/spidev0.0"
	}
	if c.SpiClockHz == 0 {
		c.SpiClockHz = 1000000
	}
	if c.CEPin == 0 {
		c.CEPin = 25
	}
	if c.NSSPin == 0 {
		c.NSSPin = 8
	}
	return c
}

func openPin(role string, num int) (*realPin, error) {
	name := fmt.Sprintf("GPIO%d", num)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %w: failed to open %s pin %s", ErrPkg, ErrInvalidConfig, role, name)
	}
	return &realPin{PinIO: p}, nil
}

// New creates and initializes a new NRF24L01+ driver for Linux systems.
// It applies configuration defaults, initializes the GPIO and SPI interfaces using periph.io,
// and runs Init with the radio configuration.
// It returns the initialized driver or an error if hardware initialization fails.
func New(c Config) (*Device, error) {
	// Validate before touching hardware
	if _, err := Encode(c.RadioConfig); err != nil {
		return nil, err
	}
	c = c.withDefaults()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w: failed to initialize periph.io host: %w", ErrPkg, ErrTransport, err)
	}

	p, err := spireg.Open(c.SpiBusPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: failed to open SPI port: %w", ErrPkg, ErrTransport, err)
	}

	// Mode 0, 8 bits, chip select driven through NSSPin
	conn, err := p.Connect(physic.Frequency(c.SpiClockHz)*physic.Hertz, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %w: failed to create SPI connection: %w", ErrPkg, ErrTransport, err)
	}

	ce, err := openPin("CE", c.CEPin)
	if err != nil {
		p.Close()
		return nil, err
	}
	nss, err := openPin("NSS", c.NSSPin)
	if err != nil {
		p.Close()
		return nil, err
	}
	// Idle levels: chip disabled, bus released
	if err := ce.Out(Low); err != nil {
		p.Close()
		return nil, transportErr("drive CE Low", err)
	}
	if err := nss.Out(High); err != nil {
		p.Close()
		return nil, transportErr("release NSS", err)
	}

	dev, err := NewWithHardware(HardwareConfig{CE: ce, NSS: nss}, conn)
	if err != nil {
		p.Close()
		return nil, err
	}
	// Store the port closer so we can close it later
	dev.nrfPort = p

	if err := dev.Init(c.RadioConfig); err != nil {
		p.Close()
		return nil, err
	}
	return dev, nil
}
