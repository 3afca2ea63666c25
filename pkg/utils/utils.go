package utils

// Or returns the first non-zero value.
func Or[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func IfErrReturn(funcs ...func() error) error {
	for _, f := range funcs {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func Ptr[T any](v T) *T { return &v }

// Deref returns the pointed value or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func FilterSlice[S any, D any](src []S, f func(S) (D, bool)) []D {
	out := make([]D, 0, len(src))
	for _, s := range src {
		if d, ok := f(s); ok {
			out = append(out, d)
		}
	}
	return out
}

func FilterUniqSlice[S any, D comparable](src []S, f func(S) (D, bool)) []D {
	seen := make(map[D]struct{}, len(src))
	out := make([]D, 0, len(src))
	for _, s := range src {
		d, ok := f(s)
		if !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func Slice2Map[S any, K comparable, V any](src []S, f func(S) (K, V)) map[K]V {
	out := make(map[K]V, len(src))
	for _, s := range src {
		k, v := f(s)
		out[k] = v
	}
	return out
}
