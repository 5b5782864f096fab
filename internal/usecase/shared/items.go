// Package shared provides helpers used by several use cases.
package shared

import (
	"sort"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// SortByPriority orders items by cached priority, highest first.
// Ties keep sortOrder then title order so output is stable.
func SortByPriority(items []*domain.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Title < b.Title
	})
}

// ChildCounts returns the number of non-deleted children per parent id,
// split into all children and children in the next status.
func ChildCounts(items []*domain.Item) (all, next map[string]int) {
	all = make(map[string]int)
	next = make(map[string]int)
	for _, item := range items {
		if item.ParentID == "" || item.IsDeleted() {
			continue
		}
		all[item.ParentID]++
		if item.Status == domain.StatusNext {
			next[item.ParentID]++
		}
	}
	return all, next
}

// IsOpen reports whether item is neither done nor deleted.
func IsOpen(item *domain.Item) bool {
	return !item.Status.IsTerminal()
}
