// Package stdproto implements the standard-library-prototype lookup table
// of spec.md §6: a table keyed by canonicalized function name, each entry
// declaring a return kind and ordered parameter kinds from a fixed closed
// set, applied onto a FuncProto at call sites the engine can recognize by
// name (e.g. libc entry points) without a real symbol database.
package stdproto

import (
	"strconv"
	"strings"

	"github.com/tsgates/decompiler-sub010/ir"
)

// Kind is one of the closed set of parameter/return kinds spec.md §6
// names. IntPtr/UintPtr are pointer-sized signed/unsigned integers, sized
// against the architecture's word size at Apply time; VoidPtr/CharPtr/
// CharPtrPtr are always pointer-sized regardless of word size.
type Kind int

const (
	Int32 Kind = iota
	Uint32
	IntPtr
	UintPtr
	VoidPtr
	CharPtr
	CharPtrPtr
	Double
	Void
)

// Prototype is one table entry: a return kind, ordered parameter kinds,
// and the two flags spec.md §6 names.
type Prototype struct {
	Return  Kind
	Params  []Kind
	Varargs bool
	NoReturn bool
}

// Table is a canonicalized-name -> Prototype lookup.
type Table map[string]Prototype

// Canonicalize strips every leading underscore, the name-mangling
// convention spec.md §6 specifies for matching compiler-prefixed symbols
// (e.g. "_malloc", "__malloc") against the table.
func Canonicalize(name string) string {
	return strings.TrimLeft(name, "_")
}

// Lookup finds name's prototype after canonicalizing it.
func (t Table) Lookup(name string) (Prototype, bool) {
	p, ok := t[Canonicalize(name)]
	return p, ok
}

// Default is a small table of common libc entry points, enough to give
// Apply something real to attach without requiring a full symbol database.
var Default = Table{
	"malloc":  {Return: VoidPtr, Params: []Kind{UintPtr}},
	"free":    {Return: Void, Params: []Kind{VoidPtr}},
	"memcpy":  {Return: VoidPtr, Params: []Kind{VoidPtr, VoidPtr, UintPtr}},
	"strlen":  {Return: UintPtr, Params: []Kind{CharPtr}},
	"printf":  {Return: Int32, Params: []Kind{CharPtr}, Varargs: true},
	"exit":    {Return: Void, Params: []Kind{Int32}, NoReturn: true},
	"abort":   {Return: Void, NoReturn: true},
}

// kindName renders a Kind as a FuncProto.ParamKinds string, sizing IntPtr/
// UintPtr against wordSize and VoidPtr against pointerSize; CharPtr and
// CharPtrPtr carry no size suffix (spec.md §6 "at the architecture's
// pointer and word sizes").
func kindName(k Kind, wordSize, pointerSize int) string {
	switch k {
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case IntPtr:
		return sizedName("int", wordSize)
	case UintPtr:
		return sizedName("uint", wordSize)
	case VoidPtr:
		return sizedName("void*", pointerSize)
	case CharPtr:
		return "char*"
	case CharPtrPtr:
		return "char**"
	case Double:
		return "double"
	case Void:
		return "void"
	default:
		return "?"
	}
}

func sizedName(base string, size int) string {
	return base + "@" + strconv.Itoa(size)
}

// Apply constructs a FuncProto from p, sized against wordSize/pointerSize
// (bytes), and attaches it to proto — spec.md §6 "constructing a
// PrototypePieces ... and attaching to the FuncProto".
func Apply(p Prototype, wordSize, pointerSize int, proto *ir.FuncProto) {
	proto.ReturnKind = kindName(p.Return, wordSize, pointerSize)
	proto.ParamKinds = make([]string, len(p.Params))
	for i, k := range p.Params {
		proto.ParamKinds[i] = kindName(k, wordSize, pointerSize)
	}
	proto.Varargs = p.Varargs
	proto.NoReturn = p.NoReturn
}
