// Package bitio implements the little-endian scalar, GUID, ASCII and
// UTF-16LE reads, alignment and checksum helpers shared by the volume, file
// and section decoders in pkg/uefi.
package bitio

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/fwtools/xblfv/pkg/guid"
)

// Reader wraps an immutable byte slice and offers absolute-offset reads.
// It never mutates or retains a copy of the input.
type Reader struct {
	buf []byte
}

// New wraps buf for reading. buf is never modified.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of bytes in the wrapped buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Bytes returns the raw slice; callers must not mutate it.
func (r *Reader) Bytes() []byte {
	return r.buf
}

func (r *Reader) need(o, n int) error {
	if o < 0 || n < 0 || o+n > len(r.buf) {
		return fmt.Errorf("bitio: read of %d bytes at offset %#x exceeds buffer length %#x", n, o, len(r.buf))
	}
	return nil
}

// U8 reads an unsigned byte at absolute offset o.
func (r *Reader) U8(o int) (uint8, error) {
	if err := r.need(o, 1); err != nil {
		return 0, err
	}
	return r.buf[o], nil
}

// U16 reads a little-endian uint16 at absolute offset o.
func (r *Reader) U16(o int) (uint16, error) {
	if err := r.need(o, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[o : o+2]), nil
}

// U24 reads a little-endian 24-bit value, zero-extended to uint32.
func (r *Reader) U24(o int) (uint32, error) {
	if err := r.need(o, 3); err != nil {
		return 0, err
	}
	b := r.buf[o : o+3]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// U32 reads a little-endian uint32 at absolute offset o.
func (r *Reader) U32(o int) (uint32, error) {
	if err := r.need(o, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[o : o+4]), nil
}

// U64 reads a little-endian uint64 at absolute offset o.
func (r *Reader) U64(o int) (uint64, error) {
	if err := r.need(o, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.buf[o : o+8]), nil
}

// GUID reads a 16-byte UEFI mixed-endian GUID at absolute offset o.
func (r *Reader) GUID(o int) (guid.GUID, error) {
	if err := r.need(o, guid.Size); err != nil {
		return guid.GUID{}, err
	}
	var g guid.GUID
	copy(g[:], r.buf[o:o+guid.Size])
	return g, nil
}

// ASCII decodes n bytes at absolute offset o as ASCII text.
func (r *Reader) ASCII(o, n int) (string, error) {
	if err := r.need(o, n); err != nil {
		return "", err
	}
	return string(r.buf[o : o+n]), nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16LE decodes nBytes bytes at absolute offset o as UTF-16LE text. The
// caller is responsible for trimming trailing NUL/space padding.
func (r *Reader) UTF16LE(o, nBytes int) (string, error) {
	if err := r.need(o, nBytes); err != nil {
		return "", err
	}
	decoded, err := utf16le.NewDecoder().Bytes(r.buf[o : o+nBytes])
	if err != nil {
		return "", fmt.Errorf("bitio: utf16le decode at offset %#x: %w", o, err)
	}
	return string(decoded), nil
}

// FindASCII returns the first byte offset at which needle occurs in b, or
// ok=false if it is absent.
func FindASCII(b []byte, needle string) (offset int, ok bool) {
	n := []byte(needle)
	if len(n) == 0 || len(n) > len(b) {
		return 0, false
	}
	for i := 0; i+len(n) <= len(b); i++ {
		if string(b[i:i+len(n)]) == needle {
			return i, true
		}
	}
	return 0, false
}

// Align returns the smallest offset >= o such that (base+offset) mod a == 0.
// Alignment is relative to base, the absolute position of o=0 in the
// original volume, so the same local slice can be aligned consistently
// regardless of where the caller started reading from it.
func Align(base, o, a uint64) uint64 {
	if a == 0 {
		return o
	}
	abs := base + o
	rem := abs % a
	if rem == 0 {
		return o
	}
	return o + (a - rem)
}

// Sum8 computes the two's-complement 8-bit checksum over b: the value that,
// added to the stored checksum byte (already zeroed in b by the caller),
// makes the total zero mod 256.
func Sum8(b []byte) uint8 {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return -sum
}

// Sum16 computes the analogous 16-bit little-endian checksum. len(b) must
// be even.
func Sum16(b []byte) (uint16, error) {
	if len(b)%2 != 0 {
		return 0, fmt.Errorf("bitio: sum16 needs an even-length slice, got %d bytes", len(b))
	}
	var sum uint16
	for i := 0; i < len(b); i += 2 {
		sum += binary.LittleEndian.Uint16(b[i : i+2])
	}
	return -sum, nil
}
