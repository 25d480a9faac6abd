package dashboard

// ExpandSet tracks which incident rows show their details.
// Rows are collapsed unless their id is in the set.
type ExpandSet struct {
	ids map[string]struct{}
}

// NewExpandSet creates an empty set.
func NewExpandSet() *ExpandSet {
	return &ExpandSet{ids: make(map[string]struct{})}
}

// Toggle flips the state of one row and returns the new state.
func (s *ExpandSet) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Expanded reports whether the row is expanded.
func (s *ExpandSet) Expanded(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of expanded rows.
func (s *ExpandSet) Len() int {
	return len(s.ids)
}
