package utils

// RemoveDuplicates returns the unique elements of items, each at the
// position of its first occurrence. The result is nil if items is empty.
func RemoveDuplicates[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	var unique []T
	for _, item := range items {
		if _, ok := seen[item]; !ok {
			seen[item] = struct{}{}
			unique = append(unique, item)
		}
	}
	return unique
}
