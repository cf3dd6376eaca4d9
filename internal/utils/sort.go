package utils

import (
	"sort"
	"time"
)

// SortByDate orders items by the date returned from key. Items sharing a date
// keep their relative order.
func SortByDate[T any](items []T, key func(T) time.Time, asc bool) []T {
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return key(items[i]).Before(key(items[j]))
		}
		return key(items[i]).After(key(items[j]))
	})
	return items
}
