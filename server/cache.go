package server

import (
	"strconv"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/etnz/finagle"
)

// reportCache keeps computed capital gains reports per user. Any write to a
// user's transactions must invalidate its reports.
//
// Each invalidation bumps the user's generation. A report computed from data
// read before the bump is never stored.
type reportCache struct {
	c *cache.Cache

	mu   sync.Mutex
	gens map[int64]uint64
}

func newReportCache(c *cache.Cache) *reportCache {
	return &reportCache{c: c, gens: make(map[int64]uint64)}
}

func reportKey(userID int64) string { return "cgt:" + strconv.FormatInt(userID, 10) }

func (rc *reportCache) get(userID int64) (*finagle.Report, bool) {
	v, ok := rc.c.Get(reportKey(userID))
	if !ok {
		return nil, false
	}
	r, ok := v.(*finagle.Report)
	return r, ok
}

// generation must be read before loading the transactions a report is
// computed from.
func (rc *reportCache) generation(userID int64) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gens[userID]
}

// set stores r unless the user's transactions changed since gen was read.
func (rc *reportCache) set(userID int64, gen uint64, r *finagle.Report) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.gens[userID] != gen {
		return false
	}
	rc.c.SetDefault(reportKey(userID), r)
	return true
}

func (rc *reportCache) invalidate(userID int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.gens[userID]++
	rc.c.Delete(reportKey(userID))
}

// len returns the number of cached reports.
func (rc *reportCache) len() int {
	n := 0
	for k := range rc.c.Items() {
		if strings.HasPrefix(k, "cgt:") {
			n++
		}
	}
	return n
}
