// Package cpool implements the CPoolRecord data model of spec.md §3/§6:
// the in-memory record store a byte-code-language target's constant pool
// resolves into. The `<constantpool>` XML wire format itself (repeated
// `<ref a b>`/`<cpoolrec>` elements) is an external decoder and out of
// scope — this package is the record store the decoder would populate.
package cpool

import "fmt"

// Tag is a CPoolRecord's kind, exactly the closed set spec.md §6 names.
type Tag int

const (
	Primitive Tag = iota
	Method
	Field
	Instanceof
	Arraylength
	Checkcast
	String
	Classref
)

var tagNames = map[Tag]string{
	Primitive:   "primitive",
	Method:      "method",
	Field:       "field",
	Instanceof:  "instanceof",
	Arraylength: "arraylength",
	Checkcast:   "checkcast",
	String:      "string",
	Classref:    "classref",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "?"
}

// Ref is the two-integer reference a constant pool record is keyed by
// (spec.md §6 "<ref a b>").
type Ref struct {
	A, B int64
}

// Record is one constant pool entry. Token and Data hold the `<token>`/
// `<data>` payload for the tags that carry them (method/field/instanceof/
// classref use Token; string uses Data); Value holds a primitive's numeric
// value. TypeRef is every record's trailing data-type reference.
type Record struct {
	Tag         Tag
	Constructor bool
	Destructor  bool
	Name        string
	Value       uint64
	Data        []byte
	Token       string
	TypeRef     string
}

// Pool is the constant pool record store: a Ref-keyed map with
// duplicate-ref-on-create rejection (spec.md §3).
type Pool struct {
	records map[Ref]*Record
}

func New() *Pool {
	return &Pool{records: make(map[Ref]*Record)}
}

// Create adds a new record at ref. Returns an error if ref is already
// occupied — a constant pool ref is assigned once, by the encoder that
// built the pool, never reassigned.
func (p *Pool) Create(ref Ref, rec Record) error {
	if _, exists := p.records[ref]; exists {
		return fmt.Errorf("cpool: duplicate ref (%d, %d)", ref.A, ref.B)
	}
	r := rec
	p.records[ref] = &r
	return nil
}

// Lookup returns the record at ref, if any.
func (p *Pool) Lookup(ref Ref) (*Record, bool) {
	r, ok := p.records[ref]
	return r, ok
}

// Delete removes the record at ref, if any.
func (p *Pool) Delete(ref Ref) {
	delete(p.records, ref)
}

// Len returns the number of records currently in the pool.
func (p *Pool) Len() int { return len(p.records) }
