//go:build tinygo

package nrf24l01p

import (
	"machine"
)

// tinygoPin wraps a machine.Pin configured as output to satisfy the Pin interface.
type tinygoPin struct {
	pin machine.Pin
}

func newTinygoPin(pin machine.Pin, idle Level) *tinygoPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Set(bool(idle))
	return &tinygoPin{pin: pin}
}

func (p *tinygoPin) Out(l Level) error {
	p.pin.Set(bool(l))
	return nil
}

func (p *tinygoPin) Read() Level {
	return Level(p.pin.Get())
}

// tinygoSPI wraps a machine.SPI to satisfy the SPI interface.
// Chip select is left to the driver.
type tinygoSPI struct {
	spi *machine.SPI
}

func (s *tinygoSPI) Tx(w, r []byte) error {
	return s.spi.Tx(w, r)
}

// NewTinyGo creates and initializes a new NRF24L01+ driver for TinyGo systems.
// spi must already be configured for Mode 0.
func NewTinyGo(c RadioConfig, spi *machine.SPI, nssPin, cePin machine.Pin) (*Device, error) {
	ce := newTinygoPin(cePin, Low)
	nss := newTinygoPin(nssPin, High)

	dev, err := NewWithHardware(HardwareConfig{CE: ce, NSS: nss}, &tinygoSPI{spi: spi})
	if err != nil {
		return nil, err
	}
	if err := dev.Init(c); err != nil {
		return nil, err
	}
	return dev, nil
}
