package params

// Changed reports whether any key of either bag renders a different string
// value in the other. A key missing on one side renders as "undefined", so
// adding or removing a key counts as a change.
//
// Pagination uses it to detect servers that keep returning the same cursor.
func Changed(current, next Bag) bool {
	for _, e := range current.entries {
		if e.Value.String() != next.Lookup(e.Key).String() {
			return true
		}
	}
	for _, e := range next.entries {
		if _, ok := current.Get(e.Key); ok {
			continue
		}
		if e.Value.String() != Absent().String() {
			return true
		}
	}
	return false
}
