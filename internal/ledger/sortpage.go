package ledger

import "sort"

// Page size bounds. Requested sizes are clamped into this range; a missing
// or unparsable size falls back to the default.
const (
	MinPageSize     = 10
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// SortEntries orders entries by date descending, breaking ties on the type
// label ascending. The sort is stable so identical (date, type) pairs keep
// their input order and pagination stays deterministic between requests.
func SortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// ClampPageSize normalizes a requested page size into [MinPageSize, MaxPageSize].
func ClampPageSize(size int) int {
	if size == 0 {
		return DefaultPageSize
	}
	if size < MinPageSize {
		return MinPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Paginate slices the 1-based page window out of the sorted entries.
// Out-of-range pages yield an empty slice, never an error.
func Paginate(entries []Entry, page, size int) []Entry {
	size = ClampPageSize(size)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(entries) {
		return []Entry{}
	}
	end := start + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}
