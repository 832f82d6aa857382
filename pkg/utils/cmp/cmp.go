package cmp

// SliceEq reports whether a and b have the same elements in the same order.
func SliceEq[T comparable](a, b []T) bool {
	return SliceEqWith(a, b, func(x, y T) bool { return x == y })
}

// SliceEqWith is SliceEq with custom equality.
func SliceEqWith[A, B any](a []A, b []B, eq func(A, B) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SliceContentEq reports whether a and b have the same elements, ignoring order.
//
// Multiplicity is respected: [a, a, b] and [a, b, b] are not equal.
func SliceContentEq[T comparable](a, b []T) bool {
	return SliceContentEqWith(a, b, func(x, y T) bool { return x == y })
}

// SliceContentEqWith is SliceContentEq with custom equality.
func SliceContentEqWith[A, B any](a []A, b []B, eq func(A, B) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
OUTER:
	for _, x := range a {
		for j, y := range b {
			if used[j] {
				continue
			}
			if eq(x, y) {
				used[j] = true
				continue OUTER
			}
		}
		return false
	}
	return true
}

// SliceContains reports whether sli has item.
func SliceContains[T comparable](sli []T, item T) bool {
	for _, s := range sli {
		if s == item {
			return true
		}
	}
	return false
}

// MapEq reports whether a and b have the same keys with the same values.
func MapEq[K, V comparable](a, b map[K]V) bool {
	return MapEqWith(a, b, func(x, y V) bool { return x == y })
}

// MapEqWith is MapEq with custom equality of values.
func MapEqWith[K comparable, A, B any](a map[K]A, b map[K]B, eq func(A, B) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			return false
		}
		if !eq(va, vb) {
			return false
		}
	}
	return true
}
