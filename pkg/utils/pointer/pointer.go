package pointer

// Ref returns a pointer to a copy of t.
//
// It is handy to fill optional fields of k8s object specs with literals.
func Ref[T any](t T) *T {
	return &t
}
