// Package codec decodes the primitive field encodings shared by both
// physics formats: big-endian integers, fixed-point reals, angles,
// optional-value sentinels and bit-packed flag words.
package codec

import (
	"encoding/binary"
	"io"
)

// ReadU16 reads a big-endian unsigned 16-bit word.
func ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadU32 reads a big-endian unsigned 32-bit word.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadFixed reads a 16.16 fixed-point real: a signed 32-bit word divided
// by 65536. 0x00010000 decodes to 1.0.
func ReadFixed(r io.Reader) (float32, error) {
	v, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return float32(int32(v)) / 65536, nil
}

// ReadWorld reads a 6.10 fixed-point real, the encoding used for world
// distances, speeds and accelerations: a signed 16-bit word divided by
// 1024. 0x0400 decodes to 1.0.
func ReadWorld(r io.Reader) (float32, error) {
	v, err := ReadU16(r)
	if err != nil {
		return 0, err
	}
	return float32(int16(v)) / 1024, nil
}

// ReadAngle reads a signed 16-bit angle in 512ths of a circle and returns
// degrees. 256 decodes to 180.0.
func ReadAngle(r io.Reader) (float32, error) {
	v, err := ReadU16(r)
	if err != nil {
		return 0, err
	}
	return float32(int16(v)) * 360 / 512, nil
}

// ReadOptionalU16 reads a 16-bit word whose top bit is a presence flag:
// if 0x8000 is set the value is absent (nil), otherwise the word itself
// is the value. Values >= 0x8000 cannot be represented as present.
func ReadOptionalU16(r io.Reader) (*uint16, error) {
	v, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	if v&0x8000 != 0 {
		return nil, nil
	}
	return &v, nil
}

// ReadOptionalU32 reads a 32-bit word using the same absence sentinel as
// ReadOptionalU16: bit 15, not bit 31. The original reader tested the
// 16-bit mask against the full word and existing files depend on that,
// so it is reproduced here as-is.
func ReadOptionalU32(r io.Reader) (*uint32, error) {
	v, err := ReadU32(r)
	if err != nil {
		return nil, err
	}
	if v&0x8000 != 0 {
		return nil, nil
	}
	return &v, nil
}

// ReadOptionalWorld reads an optional 6.10 fixed-point real: absent when
// bit 0x8000 is set, otherwise the signed word divided by 1024.
func ReadOptionalWorld(r io.Reader) (*float32, error) {
	v, err := ReadOptionalU16(r)
	if err != nil || v == nil {
		return nil, err
	}
	f := float32(int16(*v)) / 1024
	return &f, nil
}

// ReadBitSet32 reads a 32-bit word and returns the ascending indices of
// its set bits. The result is never nil.
func ReadBitSet32(r io.Reader) ([]uint32, error) {
	v, err := ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := []uint32{}
	for i := uint32(0); i < 32; i++ {
		if v&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out, nil
}

// UnpackFlags assigns the low bits of a flag word to the given
// destinations in order, bit 0 first. Destinations beyond the word's
// meaningful bits simply read as false.
func UnpackFlags(flags uint32, dst ...*bool) {
	bit := uint32(1)
	for _, d := range dst {
		*d = flags&bit != 0
		bit <<= 1
	}
}

// ReadFlags16 reads a 16-bit flag word and unpacks it into dst in order.
func ReadFlags16(r io.Reader, dst ...*bool) error {
	v, err := ReadU16(r)
	if err != nil {
		return err
	}
	UnpackFlags(uint32(v), dst...)
	return nil
}

// ReadFlags32 reads a 32-bit flag word and unpacks it into dst in order.
func ReadFlags32(r io.Reader, dst ...*bool) error {
	v, err := ReadU32(r)
	if err != nil {
		return err
	}
	UnpackFlags(v, dst...)
	return nil
}
