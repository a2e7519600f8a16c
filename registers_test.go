package nrf24l01p

import (
	"errors"
	"testing"
)

func TestRegisterMapLayout(t *testing.T) {
	regs := Registers()
	seen := map[byte]bool{}
	for i, r := range regs {
		if i > 0 && r.Addr <= regs[i-1].Addr {
			t.Errorf("Register %s out of address order", r.Name)
		}
		if IsReserved(r.Addr) || r.Addr > registerMask {
			t.Errorf("Register %s has forbidden address 0x%02X", r.Name, r.Addr)
		}
		if r.MinWidth < 1 || r.MinWidth > r.Width || r.Width > 5 {
			t.Errorf("Register %s has bad width %d-%d", r.Name, r.MinWidth, r.Width)
		}
		seen[r.Addr] = true
	}
	for a := byte(0); a <= 0x1D; a++ {
		if !IsReserved(a) && !seen[a] {
			t.Errorf("Register 0x%02X missing from map", a)
		}
	}
	for a := byte(0x18); a <= 0x1B; a++ {
		if _, ok := LookupRegister(a); ok {
			t.Errorf("Reserved register 0x%02X is addressable", a)
		}
	}
}

func TestRegisterFieldsDoNotOverlap(t *testing.T) {
	for _, r := range Registers() {
		var used byte
		for _, f := range r.Fields {
			if f.Width == 0 || int(f.Pos)+int(f.Width) > 8 {
				t.Errorf("%s.%s does not fit in a byte", r.Name, f.Name)
			}
			if f.Min > f.Max || int(f.Max) >= 1<<f.Width {
				t.Errorf("%s.%s has legal range %d-%d wider than its bits", r.Name, f.Name, f.Min, f.Max)
			}
			if used&f.Mask() != 0 {
				t.Errorf("%s.%s overlaps a sibling field", r.Name, f.Name)
			}
			used |= f.Mask()
		}
	}
}

func TestRegisterPack(t *testing.T) {
	cfg := mustRegister(_CONFIG)

	b, err := cfg.Pack(FieldValue{"PWR_UP", 1}, FieldValue{"PRIM_RX", 1}, FieldValue{"MASK_RX_DR", 1})
	if err != nil || b != 0x43 {
		t.Errorf("Expected 0x43, got 0x%02X (%v)", b, err)
	}
	if got := cfg.Unpack(b); fieldValue(got, "PWR_UP") != 1 || fieldValue(got, "MASK_RX_DR") != 1 || fieldValue(got, "EN_CRC") != 0 {
		t.Errorf("Unpack(0x43) = %v", got)
	}

	for name, values := range map[string][]FieldValue{
		"unknown field": {{"NOPE", 1}},
		"out of range":  {{"PWR_UP", 2}},
		"twice":         {{"PWR_UP", 1}, {"PWR_UP", 1}},
	} {
		if _, err := cfg.Pack(values...); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}

	if _, err := mustRegister(_SETUP_AW).Pack(FieldValue{"AW", 0}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected illegal SETUP_AW encoding rejected, got %v", err)
	}
}

func TestLookupRegisterReturnsCopy(t *testing.T) {
	r, ok := LookupRegister(_RF_CH)
	if !ok {
		t.Fatal("RF_CH not found")
	}
	r.Fields[0].Max = 127

	again, _ := LookupRegister(_RF_CH)
	if again.Fields[0].Max != 63 {
		t.Error("Register map was modified through a lookup result")
	}
}

func TestStatusString(t *testing.T) {
	for _, tc := range []struct {
		s    Status
		pipe int
		want string
	}{
		{0x0E, -1, "RxDR- TxDS- MaxRT- TxFull- RxPipe:-1"},
		{0x42, 1, "RxDR+ TxDS- MaxRT- TxFull- RxPipe:1"},
		{0x31, 0, "RxDR- TxDS+ MaxRT+ TxFull+ RxPipe:0"},
	} {
		if tc.s.RxPipe() != tc.pipe {
			t.Errorf("Status 0x%02X: expected pipe %d, got %d", byte(tc.s), tc.pipe, tc.s.RxPipe())
		}
		if got := tc.s.String(); got != tc.want {
			t.Errorf("Status 0x%02X: expected %q, got %q", byte(tc.s), tc.want, got)
		}
	}

	if got := FIFOStatus(0x11).String(); got != "TxReuse- TxFull- TxEmpty+ RxFull- RxEmpty+" {
		t.Errorf("Unexpected FIFO string %q", got)
	}
}

func TestOpcodes(t *testing.T) {
	standalone := map[Opcode]bool{OpFlushTX: true, OpFlushRX: true, OpReuseTxPayload: true, OpNOP: true}
	for _, o := range []Opcode{
		OpReadRegister, OpWriteRegister, OpActivate, OpReadRxPayloadWidth, OpReadRxPayload,
		OpWriteTxPayload, OpWriteAckPayload, OpFlushTX, OpFlushRX, OpReuseTxPayload, OpNOP,
	} {
		if o.Standalone() != standalone[o] {
			t.Errorf("%s: Standalone() = %v", o, o.Standalone())
		}
	}
	if OpWriteAckPayload.String() != "W_ACK_PAYLOAD" || Opcode(0x42).String() != "Opcode(0x42)" {
		t.Error("Unexpected opcode names")
	}
}
