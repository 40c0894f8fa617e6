package arch

import "github.com/tsgates/decompiler-sub010/ir"

// Loader provides byte access into a loaded binary image and the default
// code space it should be interpreted against (spec.md §6 "Loader").
type Loader interface {
	ReadBytes(addr ir.Address, size int) ([]byte, error)
	DefaultCodeSpace() *ir.Space
}

// RawLoader is the raw capability's Loader: a flat byte image, optionally
// offset by AdjustVMA (byte 0 maps to address AdjustVMA rather than 0).
// The raw capability matches any file (spec.md §6), so RawLoader has no
// sniffing logic of its own.
type RawLoader struct {
	Data      []byte
	AdjustVMA uint64
	Space     *ir.Space
}

func NewRawLoader(data []byte, adjustVMA uint64, space *ir.Space) *RawLoader {
	return &RawLoader{Data: data, AdjustVMA: adjustVMA, Space: space}
}

func (l *RawLoader) DefaultCodeSpace() *ir.Space { return l.Space }

func (l *RawLoader) ReadBytes(addr ir.Address, size int) ([]byte, error) {
	off := addr.Offset()
	if off < l.AdjustVMA {
		return nil, errOutOfRange(addr)
	}
	start := off - l.AdjustVMA
	if start+uint64(size) > uint64(len(l.Data)) {
		return nil, errOutOfRange(addr)
	}
	return l.Data[start : start+uint64(size)], nil
}

// XMLLoader is the XML capability's Loader: its binary image and space
// binding come from decoding the save-file envelope, which is out of
// scope (§6) — this struct models the shape a decoder would populate, not
// the decoder itself.
type XMLLoader struct {
	RawLoader
}

func errOutOfRange(addr ir.Address) error {
	return &rangeError{addr: addr}
}

type rangeError struct{ addr ir.Address }

func (e *rangeError) Error() string { return "address out of range: " + e.addr.String() }
