package common

import "golang.org/x/exp/constraints"

func Min[T constraints.Ordered](l, r T) T {
	if l < r {
		return l
	}
	return r
}

func Max[T constraints.Ordered](l, r T) T {
	if l > r {
		return l
	}
	return r
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
