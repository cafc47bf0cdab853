package pagination

// Slice returns items[offset : offset+limit] clamped to the available length.
// An offset at or past the end, or a non-positive limit, yields an empty slice.
// Negative offsets are treated as 0.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	return items[offset:end]
}
