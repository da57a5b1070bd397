package profileinator

// normalizeLength forces items to exactly target entries: extra entries are
// truncated from the right, missing entries are padded on the right with pad.
// The input slice is never mutated.
func normalizeLength[T any](items []T, target int, pad T) []T {
	if target < 0 {
		target = 0
	}

	out := make([]T, target)
	n := copy(out, items)
	for i := n; i < target; i++ {
		out[i] = pad
	}
	return out
}
