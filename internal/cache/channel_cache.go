package cache

import "sync"

// ChannelCache lazily resolves and memoizes one channel id per guild.
// Each guild gets its own sync.Once so a slow lookup for one guild never
// blocks lookups for another, and the lookup runs at most once per guild.
// An empty id means the guild has no matching channel; that result is cached
// too.
type ChannelCache struct {
	mu      sync.Mutex
	entries map[string]*channelEntry
	lookup  func(guildID string) (string, error)
}

type channelEntry struct {
	once sync.Once
	id   string
	err  error
}

// NewChannelCache builds a cache around the given lookup function.
func NewChannelCache(lookup func(guildID string) (string, error)) *ChannelCache {
	return &ChannelCache{
		entries: make(map[string]*channelEntry),
		lookup:  lookup,
	}
}

// Get returns the channel id for the guild, computing it on first use.
func (c *ChannelCache) Get(guildID string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[guildID]
	if !ok {
		entry = &channelEntry{}
		c.entries[guildID] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.id, entry.err = c.lookup(guildID)
	})
	return entry.id, entry.err
}
