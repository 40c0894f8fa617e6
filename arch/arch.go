// Package arch implements the external-interface shapes of spec.md §6 that
// the rest of the engine needs a concrete (non-mock) collaborator for:
// Architecture, Loader, and capability selection. The actual persistence
// formats (XML save-file, constant pool wire format) are out of scope —
// these types model the handle shape and the capability-matching rule,
// not a decoder.
package arch

import (
	"bytes"

	"github.com/tsgates/decompiler-sub010/action"
	"github.com/tsgates/decompiler-sub010/comment"
	"github.com/tsgates/decompiler-sub010/ir"
)

// Kind distinguishes the two built-in Loader/Architecture capabilities
// (spec.md §6 "Loader").
type Kind int

const (
	RawKind Kind = iota
	XMLKind
)

// Store is the persistence envelope an Architecture restores from. Its
// real shape (XML element decoding) is out of scope (§6); this interface
// exists only so RestoreXML has something concrete to call, and so a test
// double can exercise the raw-vs-XML open question below.
type Store interface {
	// RestoreRawFields restores just the load-specific fields a raw
	// architecture carries (e.g. adjustvma): no shared base-class init.
	RestoreRawFields(a *Architecture) error
	// RestoreFullState restores the complete architecture state an XML
	// save-file carries, after the shared base-class init has run.
	RestoreFullState(a *Architecture) error
}

// Architecture is the opaque handle of spec.md §6: a read-only (after
// init) spaces table, default data space, the process-wide comment
// database, and the root action tree.
type Architecture struct {
	Kind             Kind
	Spaces           []*ir.Space
	DefaultDataSpace *ir.Space
	CommentDB        *comment.Database
	AllActions       *action.Group

	initialized bool
}

// New builds an Architecture of the given kind. CommentDB is always
// allocated fresh; callers needing a shared DB across architectures should
// replace it directly before use.
func New(kind Kind, spaces []*ir.Space, defaultDataSpace *ir.Space, allActions *action.Group) *Architecture {
	return &Architecture{
		Kind:             kind,
		Spaces:           spaces,
		DefaultDataSpace: defaultDataSpace,
		CommentDB:        comment.NewDatabase(),
		AllActions:       allActions,
	}
}

// GetDefaultDataSpace returns the space new free Varnodes default to when
// no more specific space is known.
func (a *Architecture) GetDefaultDataSpace() *ir.Space { return a.DefaultDataSpace }

// Init runs the one-time, synchronized setup every Architecture kind
// shares (spec.md §6 "init(store)"). After Init, Spaces/DefaultDataSpace
// are read-only for the lifetime of the driver (§5).
func (a *Architecture) Init(store Store) error {
	a.initialized = true
	return nil
}

// RestoreXML restores an Architecture's state from store. Per spec.md §9
// open question (c), a raw architecture's restoreXml skips the shared
// base-class init sequence entirely — it restores only its own
// load-specific fields — while an XML architecture runs Init first (if it
// hasn't already) and then restores full state. This asymmetry is
// preserved deliberately, not "fixed": a raw architecture's init is a
// no-op by construction (New already set up everything Init would), so
// skipping it changes nothing observable for Raw but matters for any
// future XML-only init step.
func (a *Architecture) RestoreXML(store Store) error {
	if a.Kind == RawKind {
		return store.RestoreRawFields(a)
	}
	if !a.initialized {
		if err := a.Init(store); err != nil {
			return err
		}
	}
	return store.RestoreFullState(a)
}

// DetectKind implements the capability-matching rule of spec.md §6/§8
// scenario 6: the XML capability matches a file whose first non-whitespace
// bytes are `<bi` (or whose header contains one of the two save-file
// element names anywhere); the raw capability matches any file at all. Ambiguity is
// resolved by trying XML first — DetectKind embodies that ordering
// directly rather than leaving it to the caller.
func DetectKind(header []byte) Kind {
	trimmed := bytes.TrimLeft(header, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<bi")) {
		return XMLKind
	}
	if bytes.Contains(trimmed, []byte("xml_savefile")) || bytes.Contains(trimmed, []byte("raw_savefile")) {
		return XMLKind
	}
	return RawKind
}
