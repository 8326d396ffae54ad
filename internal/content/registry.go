package content

import (
	"sort"
	"sync"
)

var (
	mu      sync.RWMutex
	lessons []*Lesson
	byID    = make(map[string]*Lesson)
)

// Register adds lessons to the global registry, keeping them sorted by order.
// Typically called from a content package's init() function.
func Register(ls ...*Lesson) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range ls {
		byID[l.ID] = l
		lessons = append(lessons, l)
	}
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
}

// All returns every registered lesson, sorted by order.
func All() []*Lesson {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]*Lesson, len(lessons))
	copy(out, lessons)
	return out
}

// Get returns a lesson by ID, or nil if not registered.
func Get(id string) *Lesson {
	mu.RLock()
	defer mu.RUnlock()
	return byID[id]
}

// NextID returns the lesson that follows currentID in order, or "" if none.
func NextID(currentID string) string {
	mu.RLock()
	defer mu.RUnlock()

	current, ok := byID[currentID]
	if !ok {
		return ""
	}
	for _, l := range lessons {
		if l.Order > current.Order {
			return l.ID
		}
	}
	return ""
}
