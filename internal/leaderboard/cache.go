package leaderboard

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache keeps recently computed live boards so leaderboard reads during a busy
// contest do not refold every submission on each request. Entries expire after
// a short TTL and are evicted eagerly when a submission reaches a terminal
// status for that contest.
type Cache struct {
	lru *expirable.LRU[string, *Board]
}

func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, *Board](size, nil, ttl),
	}
}

func (c *Cache) Get(contestID string) (*Board, bool) {
	return c.lru.Get(contestID)
}

func (c *Cache) Put(contestID string, board *Board) {
	c.lru.Add(contestID, board)
}

// Invalidate drops the cached board for a contest, e.g. after a new verdict.
func (c *Cache) Invalidate(contestID string) {
	c.lru.Remove(contestID)
}
