package utils

// Transform returns the result of applying fn to every element of ts, in
// order. The result has the same length as ts.
func Transform[T, R any](ts []T, fn func(T) R) []R {
	out := make([]R, len(ts))
	for i, t := range ts {
		out[i] = fn(t)
	}
	return out
}
