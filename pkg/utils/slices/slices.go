package slices

import (
	"cmp"
	"slices"
)

// map each element in sli.
//
// Each element indexed `N` in the result is `mapper(sli[N])`.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// filter elements match with predicator.
func Filter[T any](vs []T, predicator func(T) bool) []T {
	ret := []T{}
	for _, v := range vs {
		if predicator(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// convert slice to map.
//
// If keys given with getkey collide, the latter value takes over.
func ToMap[T any, K comparable](sli []T, getkey func(v T) K) map[K]T {
	m := make(map[K]T, len(sli))
	for _, v := range sli {
		m[getkey(v)] = v
	}
	return m
}

// SortedKeysOf returns keys of m in ascending order.
func SortedKeysOf[K cmp.Ordered, T any](m map[K]T) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Chunk splits sli into slices with at most size elements.
//
// The last chunk can be shorter. size < 1 is treated as 1.
func Chunk[T any](sli []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	ret := make([][]T, 0, (len(sli)+size-1)/size)
	for size < len(sli) {
		sli, ret = sli[size:], append(ret, sli[:size:size])
	}
	if len(sli) != 0 {
		ret = append(ret, sli)
	}
	return ret
}
