package tandem

// SystemSet groups multiple systems together within one ScheduleId.
// Ordering constraints between two sets apply between all systems of the
// two sets. A SystemSet is identified by its pointer.
type SystemSet struct {
	after      []*SystemSet
	before     []*SystemSet
	predicates []AnySystem
}

// After configures all systems in this set to run after the systems of the other set.
func (s *SystemSet) After(other *SystemSet) *SystemSet {
	s.after = append(s.after, other)
	return s
}

// Before configures all systems in this set to run before the systems of the other set.
func (s *SystemSet) Before(other *SystemSet) *SystemSet {
	s.before = append(s.before, other)
	return s
}

// RunIf adds a predicate to all systems in this set.
// The predicate is a system that must return a bool.
func (s *SystemSet) RunIf(predicate AnySystem) *SystemSet {
	s.predicates = append(s.predicates, predicate)
	return s
}
