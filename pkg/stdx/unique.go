package stdx

// Unique returns the elements of values with duplicates removed, keeping the
// first occurrence of each element in its original position.
//
// The input slice is not modified. For pointer types the comparison is by
// identity, which is what the hub relies on to deliver to a subscriber once
// per dispatch even when several of its patterns match.
func Unique[T comparable](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
