package ptr

// Ref returns a pointer to the value passed as argument.
//
// Useful for optional numeric fields like weights and rest times
// that are modelled as pointers.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns the value behind p, or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
