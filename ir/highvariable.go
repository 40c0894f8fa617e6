package ir

// StorageClass classifies how a HighVariable's storage was determined.
type StorageClass int

const (
	StorageNormal StorageClass = iota
	StorageAddrTied
	StoragePiece
)

// HighVariable groups one or more SSA Varnode instances that the merge
// algorithm (§4.1) judged to be the same high-level variable.
type HighVariable struct {
	id       int
	Type     string // placeholder type descriptor; full type system is out of scope
	Storage  StorageClass
	Piece    *HighVariable // non-nil if this HighVariable is a sub-piece of another
	PieceLow *HighVariable // for a PIECE (concatenation) result: the low-half parent; nil for SUBPIECE, which has only one parent
	instances []*Varnode
}

func (h *HighVariable) ID() int { return h.id }

// Instances returns the non-overlapping (by SSA version) Varnodes grouped
// into h. Callers must not mutate the returned slice.
func (h *HighVariable) Instances() []*Varnode { return h.instances }

// InstanceCount returns len(Instances()).
func (h *HighVariable) InstanceCount() int { return len(h.instances) }

func (h *HighVariable) addInstance(v *Varnode) {
	for _, cur := range h.instances {
		if cur == v {
			return
		}
	}
	h.instances = append(h.instances, v)
	v.High = h
}
