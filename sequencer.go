package nrf24l01p

import (
	"errors"
	"fmt"
)

// initState tracks the progress of Init. States only move forward.
type initState byte

const (
	stateDisabled initState = iota
	stateBaseConfigWritten
	stateModeSetup
	stateRFWritten
	stateEnabled
)

func (s initState) String() string {
	switch s {
	case stateDisabled:
		return "disabled"
	case stateBaseConfigWritten:
		return "base config written"
	case stateModeSetup:
		return "mode-specific setup"
	case stateRFWritten:
		return "RF parameters written"
	case stateEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

type regWrite struct {
	addr byte
	val  byte
}

// initSteps lists the register writes for each state transition.
// In ModeTransmitter EN_AA and EN_RXADDR keep their reset values (0x3F and 0x03),
// which already enable auto-ack and reception on pipe 0 for incoming ACKs.
func initSteps(c RadioConfig, e Encoded) [][]regWrite {
	mode := []regWrite{{_SETUP_RETR, e.SetupRetr}}
	if c.Mode == ModeReceiver {
		mode = []regWrite{
			{_EN_AA, 1 << _P0_POS},
			{_EN_RXADDR, 1 << _P0_POS},
		}
	}
	return [][]regWrite{
		stateDisabled:          {{_CONFIG, e.Config}},
		stateBaseConfigWritten: mode,
		stateModeSetup: {
			{_SETUP_AW, e.SetupAW},
			{_RF_CH, e.RFCh},
			{_RF_SETUP, e.RFSetup},
		},
	}
}

// Init brings the chip from power-off to the operating mode described by c.
// The configuration is validated before any bus transaction. On failure CE is
// left low so a partially configured chip never starts operating.
// This method is concurrent safe.
func (d *Device) Init(c RadioConfig) error {
	enc, err := Encode(c)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.config.NSS.Read() != High {
		return fmt.Errorf("%w: %w: NSS is asserted before initialization", ErrPkg, ErrPrecondition)
	}

	globalLogger.Info("Initializing NRF24L01+ in " + c.Mode.String() + " mode...")

	// Ensure CE is Low (Standby-I) during configuration
	if err := d.setCE(false); err != nil {
		return err
	}
	d.state = stateDisabled

	for state, writes := range initSteps(c, enc) {
		for _, w := range writes {
			if err := d.writeRegister(w.addr, w.val); err != nil {
				return d.abortInit(err)
			}
		}
		d.state = initState(state) + 1
		globalLogger.Debug("NRF24L01+ init: " + d.state.String())
	}

	if err := d.setCE(true); err != nil {
		return d.abortInit(err)
	}
	d.state = stateEnabled
	globalLogger.Info("NRF24L01+ configured and enabled.")
	return nil
}

// abortInit drives CE low again after a failed step.
func (d *Device) abortInit(err error) error {
	globalLogger.Error("NRF24L01+ init failed after state: " + d.state.String())
	if ceErr := d.setCE(false); ceErr != nil {
		return errors.Join(err, ceErr)
	}
	return err
}
