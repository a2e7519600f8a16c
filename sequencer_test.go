package nrf24l01p

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func assertWrites(t *testing.T, got []write, want []write) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d register writes, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].addr != want[i].addr || !bytes.Equal(got[i].data, want[i].data) {
			t.Errorf("Write %d: expected 0x%02X <- %X, got 0x%02X <- %X",
				i, want[i].addr, want[i].data, got[i].addr, got[i].data)
		}
	}
}

func TestInitReceiver(t *testing.T) {
	r := newRig(t)
	cfg := RadioConfig{
		Mode:              ModeReceiver,
		CRCLength:         CRCLength8,
		MaskRxDataReady:   true,
		MaskTxDataSent:    true,
		MaskMaxRetransmit: true,
		ChannelNumber:     40,
		DataRate:          DataRate1mbps,
		PALevel:           PALevelMax,
	}

	if err := r.dev.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	assertWrites(t, r.chip.writes(), []write{
		{_CONFIG, []byte{0b0111_1011}},
		{_EN_AA, []byte{0x01}},
		{_EN_RXADDR, []byte{0x01}},
		{_SETUP_AW, []byte{0x03}},
		{_RF_CH, []byte{40}},
		{_RF_SETUP, []byte{0x06}},
	})

	// CE is driven low before the first transaction and high after the last one
	log := r.chip.log
	if log[0] != "CE=Low" {
		t.Errorf("Expected CE=Low first, got %v", log)
	}
	if log[len(log)-1] != "CE=High" || slices.Index(log, "CE=High") != len(log)-1 {
		t.Errorf("Expected a single CE=High as the last event, got %v", log)
	}
	if r.ce.level != High || !r.dev.Enabled() {
		t.Error("Expected the chip enabled after Init")
	}
}

func TestInitTransmitter(t *testing.T) {
	r := newRig(t)
	cfg := RadioConfig{
		Mode:                ModeTransmitter,
		AutoRetransmitCount: 3,
		AutoRetransmitDelay: 500,
		CRCLength:           CRCLength16,
		ChannelNumber:       63,
		DataRate:            DataRate2mbps,
		AddressWidth:        3,
	}

	if err := r.dev.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// ARD=(500/250)-1=1 in bits 7:4, ARC=3 in bits 3:0
	assertWrites(t, r.chip.writes(), []write{
		{_CONFIG, []byte{0x0E}},
		{_SETUP_RETR, []byte{0x13}},
		{_SETUP_AW, []byte{0x01}},
		{_RF_CH, []byte{63}},
		{_RF_SETUP, []byte{0x08}},
	})
	if r.ce.level != High {
		t.Error("Expected CE high after Init")
	}
}

func TestInitRejectsAssertedNSS(t *testing.T) {
	r := newRig(t)
	r.nss.level = Low

	err := r.dev.Init(RadioConfig{Mode: ModeReceiver})
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Expected ErrPrecondition, got %v", err)
	}
	if r.chip.txCount != 0 || len(r.chip.frames) != 0 {
		t.Errorf("Expected no transaction, got %X", r.chip.frames)
	}
	if r.ce.level != Low || slices.Contains(r.chip.log, "CE=High") {
		t.Errorf("Expected CE to stay low, log: %v", r.chip.log)
	}
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	for name, cfg := range map[string]RadioConfig{
		"channel 64":     {ChannelNumber: 64},
		"delay 251":      {AutoRetransmitDelay: 251},
		"delay 4001":     {AutoRetransmitDelay: 4001},
		"count 16":       {AutoRetransmitCount: 16},
		"width 2":        {AddressWidth: 2},
		"unknown rate":   {DataRate: 3},
		"unknown level":  {PALevel: 4},
		"unknown mode":   {Mode: 2},
		"unknown crc":    {CRCLength: 3},
		"receiver ch 99": {Mode: ModeReceiver, ChannelNumber: 99},
	} {
		r := newRig(t)
		err := r.dev.Init(cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
		if len(r.chip.log) != 0 || r.chip.txCount != 0 {
			t.Errorf("%s: expected no hardware activity, got %v", name, r.chip.log)
		}
	}
}

func TestInitTransportFailureLeavesCELow(t *testing.T) {
	for _, mode := range []Mode{ModeReceiver, ModeTransmitter} {
		ok := newRig(t)
		if err := ok.dev.Init(RadioConfig{Mode: mode}); err != nil {
			t.Fatal(err)
		}
		total := ok.chip.txCount

		for failTx := 1; failTx <= total; failTx++ {
			r := newRig(t)
			r.chip.failTx = failTx

			err := r.dev.Init(RadioConfig{Mode: mode})
			if !errors.Is(err, ErrTransport) {
				t.Errorf("%s Tx %d: expected ErrTransport, got %v", mode, failTx, err)
			}
			if r.ce.level != Low || slices.Contains(r.chip.log, "CE=High") {
				t.Errorf("%s Tx %d: chip enabled after partial configuration: %v", mode, failTx, r.chip.log)
			}
			if r.dev.Enabled() {
				t.Errorf("%s Tx %d: device reports enabled", mode, failTx)
			}
		}
	}
}

func TestInitCEFailure(t *testing.T) {
	r := newRig(t)
	r.ce.failHigh = true

	err := r.dev.Init(RadioConfig{})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if r.ce.level != Low || r.dev.Enabled() {
		t.Error("Expected CE low and device disabled")
	}
}

func TestInitNeverTouchesReserved(t *testing.T) {
	for _, cfg := range []RadioConfig{
		{Mode: ModeReceiver},
		{Mode: ModeTransmitter, AutoRetransmitCount: 15, AutoRetransmitDelay: 4000},
		{Mode: ModeReceiver, ContinuousWave: true, ForcePLLLock: true, PALevel: PALevelMax},
	} {
		r := newRig(t)
		if err := r.dev.Init(cfg); err != nil {
			t.Fatal(err)
		}
		for _, f := range r.chip.frames {
			if IsReserved(f[0] & registerMask) {
				t.Errorf("Init touched reserved register 0x%02X", f[0]&registerMask)
			}
		}
	}
}

func TestInitVerifyAndReadBack(t *testing.T) {
	r := newRig(t)
	cfg := RadioConfig{
		Mode:                ModeTransmitter,
		CRCLength:           CRCLength16,
		MaskTxDataSent:      true,
		AddressWidth:        4,
		AutoRetransmitDelay: 1500,
		AutoRetransmitCount: 5,
		ChannelNumber:       33,
		PALevel:             PALevelHigh,
		DataRate:            DataRate250kbps,
	}
	if err := r.dev.Init(cfg); err != nil {
		t.Fatal(err)
	}

	if err := r.dev.Verify(cfg); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
	got, err := r.dev.ReadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("ReadConfig mismatch:\nwant %s\ngot  %s", cfg, got)
	}

	r.chip.regs[_RF_CH][0] = 9
	if err := r.dev.Verify(cfg); !errors.Is(err, ErrVerify) {
		t.Errorf("Expected ErrVerify after corrupting RF_CH, got %v", err)
	}
}
