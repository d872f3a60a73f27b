package utils

// Second drops the first of two results: Second(path.Split(p)).
func Second[F, S any](_ F, s S) S { return s }

// Unpack2 returns the first two elements of s. Missing elements are zero.
func Unpack2[S ~[]T, T any](s S) (first, second T) {
	if len(s) > 0 {
		first = s[0]
	}

	if len(s) > 1 {
		second = s[1]
	}

	return first, second
}
