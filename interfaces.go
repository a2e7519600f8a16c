package nrf24l01p

// Level represents the logical level of a pin (Low or High).
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "High"
	}
	return "Low"
}

// SPI represents a generic SPI connection.
// The driver frames every transaction itself through the NSS pin, so the
// connection must not toggle a chip select of its own.
type SPI interface {
	// Tx sends w and reads into r.
	// len(r) must be 0 or equal to len(w).
	// Any bounded timeout is a property of the implementation.
	Tx(w, r []byte) error
}

// Pin represents a generic digital line driven by the driver.
type Pin interface {
	// Out sets the pin as output with the given level.
	Out(l Level) error
	// Read returns the current level of the pin.
	Read() Level
}
