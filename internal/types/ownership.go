package types

// Ownership qualifies how a binding may use its value. Qualifiers are
// computed once by the resolver and never revised afterwards: they drive
// borrow, move and clone emission on the static backend and are erased
// entirely on the dynamic backend.
type Ownership uint8

const (
	// OwnOwned bindings hold their value and may mutate or consume it.
	OwnOwned Ownership = iota
	// OwnBorrowed bindings hold a shared, read-only view.
	OwnBorrowed
	// OwnMutBorrowed bindings hold an exclusive, mutable view.
	OwnMutBorrowed
)

func (o Ownership) String() string {
	switch o {
	case OwnOwned:
		return "owned"
	case OwnBorrowed:
		return "borrowed"
	case OwnMutBorrowed:
		return "mut-borrowed"
	}
	return "invalid"
}

// AllowsMutation reports whether a binding with this qualifier may be
// written through.
func (o Ownership) AllowsMutation() bool {
	return o == OwnOwned || o == OwnMutBorrowed
}
