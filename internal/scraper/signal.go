package scraper

// Signal is a field value harvested from the page, or its absence
type Signal[T any] struct {
	Value  T
	Found  bool
	Source string // name of the strategy that produced the value
}

// Found returns a present signal
func Found[T any](v T) Signal[T] {
	return Signal[T]{Value: v, Found: true}
}

// Absent returns a missing signal
func Absent[T any]() Signal[T] {
	return Signal[T]{}
}

// Get returns the value and whether it was found
func (s Signal[T]) Get() (T, bool) {
	return s.Value, s.Found
}

// Or returns the value, or fallback when the signal is absent
func (s Signal[T]) Or(fallback T) T {
	if !s.Found {
		return fallback
	}
	return s.Value
}

// fill copies other into s when s is still absent; it reports whether it did
func (s *Signal[T]) fill(other Signal[T], source string) bool {
	if s.Found || !other.Found {
		return false
	}
	*s = other
	s.Source = source
	return true
}
