package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestChannelCache_ComputesOncePerGuild(t *testing.T) {
	var calls int32
	cache := NewChannelCache(func(guildID string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "channel-" + guildID, nil
	})

	for i := 0; i < 3; i++ {
		id, err := cache.Get("guild-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if id != "channel-guild-1" {
			t.Errorf("expected channel-guild-1, got %s", id)
		}
	}
	if calls != 1 {
		t.Errorf("expected one lookup, got %d", calls)
	}

	if _, err := cache.Get("guild-2"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a second lookup for a second guild, got %d", calls)
	}
}

func TestChannelCache_CachesMissesAndErrors(t *testing.T) {
	var calls int32
	lookupErr := errors.New("guild unavailable")
	cache := NewChannelCache(func(guildID string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if guildID == "broken" {
			return "", lookupErr
		}
		return "", nil
	})

	for i := 0; i < 2; i++ {
		id, err := cache.Get("no-channel")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if id != "" {
			t.Errorf("expected empty id for a guild without the channel, got %s", id)
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.Get("broken"); !errors.Is(err, lookupErr) {
			t.Errorf("expected the lookup error back, got %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("expected one lookup per guild, got %d", calls)
	}
}

func TestChannelCache_ConcurrentAccess(t *testing.T) {
	var calls int32
	cache := NewChannelCache(func(guildID string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "channel-" + guildID, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := cache.Get("guild-1")
			if err != nil || id != "channel-guild-1" {
				t.Errorf("Get returned (%q, %v)", id, err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected one lookup under concurrency, got %d", calls)
	}
}
