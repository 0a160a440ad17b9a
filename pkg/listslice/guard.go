package listslice

// typeGuard pins the element type of one transfer. The zero value accepts
// the first type it sees and rejects anything else afterwards.
type typeGuard struct {
	expected TypeID
	set      bool
}

func newTypeGuard(expected TypeID) typeGuard {
	return typeGuard{expected: expected, set: true}
}

// check establishes or verifies the element type for the element at index.
func (g *typeGuard) check(index int, actual TypeID) error {
	if !g.set {
		g.expected, g.set = actual, true
		return nil
	}
	if !SameType(g.expected, actual) {
		return &TypeMismatchError{Index: index, Expected: g.expected, Actual: actual}
	}
	return nil
}

// SameType reports whether actual is acceptable for a transfer of expected.
// Equality is exact; there is no notion of a compatible subtype.
func SameType(expected, actual TypeID) bool { return expected == actual }
