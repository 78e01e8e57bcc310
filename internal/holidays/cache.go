package holidays

import (
	"fmt"
	"sync"
)

// calendarEntry is the cached result of one successful (region, year) fetch.
type calendarEntry struct {
	public []PublicHoliday
	school []SchoolHoliday
}

// calendarCache holds fetched calendars for the life of the process.
// Calendars for a fixed year never change, so entries have no expiry;
// only failed fetches are left uncached so they can be retried.
type calendarCache struct {
	entries map[string]calendarEntry
	mu      sync.RWMutex
}

func newCalendarCache() *calendarCache {
	return &calendarCache{
		entries: make(map[string]calendarEntry),
	}
}

func cacheKey(region string, year int) string {
	return fmt.Sprintf("%s|%d", region, year)
}

func (c *calendarCache) get(region string, year int) (calendarEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(region, year)]
	return entry, ok
}

func (c *calendarCache) set(region string, year int, entry calendarEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(region, year)] = entry
}
