package codec

import (
	"bytes"
	"testing"
)

func r(b ...byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func TestReadU16(t *testing.T) {
	v, err := ReadU16(r(0x12, 0x34))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04X", v)
	}
}

func TestReadU32(t *testing.T) {
	v, err := ReadU32(r(0x12, 0x34, 0x56, 0x78))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08X", v)
	}
}

func TestReadTruncated(t *testing.T) {
	if _, err := ReadU16(r(0x12)); err == nil {
		t.Error("expected error for truncated u16")
	}
	if _, err := ReadU32(r(0x12, 0x34, 0x56)); err == nil {
		t.Error("expected error for truncated u32")
	}
}

func TestReadFixed(t *testing.T) {
	v, err := ReadFixed(r(0x00, 0x01, 0x00, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 1.0 {
		t.Errorf("expected 1.0, got %v", v)
	}
	// 0xFFFF0000 is -1.0 after signed reinterpretation.
	v, _ = ReadFixed(r(0xFF, 0xFF, 0x00, 0x00))
	if v != -1.0 {
		t.Errorf("expected -1.0, got %v", v)
	}
	v, _ = ReadFixed(r(0x00, 0x00, 0x80, 0x00))
	if v != 0.5 {
		t.Errorf("expected 0.5, got %v", v)
	}
}

func TestReadWorld(t *testing.T) {
	v, err := ReadWorld(r(0x04, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 1.0 {
		t.Errorf("expected 1.0, got %v", v)
	}
	v, _ = ReadWorld(r(0xFC, 0x00))
	if v != -1.0 {
		t.Errorf("expected -1.0, got %v", v)
	}
}

func TestReadAngle(t *testing.T) {
	v, err := ReadAngle(r(0x01, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 180.0 {
		t.Errorf("expected 180.0, got %v", v)
	}
	v, _ = ReadAngle(r(0x00, 0x80))
	if v != 90.0 {
		t.Errorf("expected 90.0, got %v", v)
	}
}

func TestReadOptionalU16(t *testing.T) {
	v, err := ReadOptionalU16(r(0x80, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != nil {
		t.Errorf("expected absent for 0x8000, got %d", *v)
	}
	// Anything with the top bit set is absent, not just the bare
	// sentinel.
	if v, _ = ReadOptionalU16(r(0xFF, 0xFF)); v != nil {
		t.Errorf("expected absent for 0xFFFF, got %d", *v)
	}
	if v, _ = ReadOptionalU16(r(0x00, 0x00)); v == nil || *v != 0 {
		t.Errorf("expected present 0, got %v", v)
	}
	if v, _ = ReadOptionalU16(r(0x7F, 0xFF)); v == nil || *v != 0x7FFF {
		t.Errorf("expected present 0x7FFF, got %v", v)
	}
}

func TestReadOptionalU32(t *testing.T) {
	// The sentinel is bit 15 even in the 32-bit field.
	v, err := ReadOptionalU32(r(0x00, 0x00, 0x80, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != nil {
		t.Errorf("expected absent for bit 15, got %d", *v)
	}
	// A set bit 31 does not mark absence.
	if v, _ = ReadOptionalU32(r(0x80, 0x00, 0x00, 0x00)); v == nil || *v != 0x80000000 {
		t.Errorf("expected present 0x80000000, got %v", v)
	}
	if v, _ = ReadOptionalU32(r(0x00, 0x00, 0x00, 0x07)); v == nil || *v != 7 {
		t.Errorf("expected present 7, got %v", v)
	}
}

func TestReadOptionalWorld(t *testing.T) {
	v, err := ReadOptionalWorld(r(0x80, 0x00))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != nil {
		t.Errorf("expected absent, got %v", *v)
	}
	if v, _ = ReadOptionalWorld(r(0x04, 0x00)); v == nil || *v != 1.0 {
		t.Errorf("expected present 1.0, got %v", v)
	}
}

func TestReadBitSet32(t *testing.T) {
	got, err := ReadBitSet32(r(0x00, 0x00, 0x00, 0x05))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []uint32{0, 2}
	if len(got) != len(want) || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected %v, got %v", want, got)
	}

	got, _ = ReadBitSet32(r(0x00, 0x00, 0x00, 0x00))
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
	if got == nil {
		t.Error("expected non-nil empty set")
	}

	got, _ = ReadBitSet32(r(0xFF, 0xFF, 0xFF, 0xFF))
	if len(got) != 32 {
		t.Fatalf("expected 32 members, got %d", len(got))
	}
	for i, b := range got {
		if b != uint32(i) {
			t.Errorf("member %d: expected %d, got %d", i, i, b)
		}
	}
}

func TestUnpackFlags(t *testing.T) {
	var a, b, c, d bool
	UnpackFlags(0b1011, &a, &b, &c, &d)
	if !a || !b || c || !d {
		t.Errorf("expected true,true,false,true; got %v,%v,%v,%v", a, b, c, d)
	}
}

func TestReadFlags16(t *testing.T) {
	var first, second, third bool
	if err := ReadFlags16(r(0x00, 0x05), &first, &second, &third); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !first || second || !third {
		t.Errorf("expected true,false,true; got %v,%v,%v", first, second, third)
	}
}

func TestReadFlags32(t *testing.T) {
	dst := make([]*bool, 28)
	vals := make([]bool, 28)
	for i := range dst {
		dst[i] = &vals[i]
	}
	// Bit 27 is the highest flag in a 28-flag word.
	if err := ReadFlags32(r(0x08, 0x00, 0x00, 0x01), dst...); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, v := range vals {
		want := i == 0 || i == 27
		if v != want {
			t.Errorf("flag %d: expected %v, got %v", i, want, v)
		}
	}
}
