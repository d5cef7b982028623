/*
Package cache memoises pipeline responses per normalised query and context.

Two backends are provided: MemoryCache, a TTL map owned by the process, and
RedisCache, which shares entries between processes. Both treat the cache as
an optimisation only: a failing backend reads as a miss and a failed write
is dropped.
*/
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/model"
)

// DefaultTTL is how long an entry is served after it was stored.
const DefaultTTL = 5 * time.Minute

// Cache stores full responses by key. Implementations must be safe for
// concurrent use; concurrent Puts of the same key are last-writer-wins.
type Cache interface {
	Get(ctx context.Context, key string) (model.Response, bool)
	Put(ctx context.Context, key string, r model.Response)
	Clear(ctx context.Context)
	Stats() Stats
}

// Stats is a point-in-time view of a cache.
type Stats struct {
	Backend string `json:"backend" msgpack:"backend"`
	Hits    int64  `json:"hits" msgpack:"hits"`
	Misses  int64  `json:"misses" msgpack:"misses"`
	Entries int    `json:"entries" msgpack:"entries"`
}

// Key derives the cache key of a query and its context. Case and
// whitespace differences in the query map to the same key; context maps are
// serialised with sorted keys.
func Key(query string, reqCtx map[string]any) string {
	ctxPart := "{}"
	if len(reqCtx) > 0 {
		if b, err := json.Marshal(reqCtx); err == nil {
			ctxPart = string(b)
		} else {
			ctxPart = fmt.Sprintf("%v", reqCtx)
		}
	}
	return utils.NormalizeQuery(query) + "|" + ctxPart
}

// clone copies r so the stored value can't be changed through the caller's
// slices or maps.
func clone(r model.Response) model.Response {
	out := r
	if r.Suggestions != nil {
		out.Suggestions = append([]model.Suggestion(nil), r.Suggestions...)
	}
	if r.Entities != nil {
		out.Entities = make(map[string][]string, len(r.Entities))
		for k, v := range r.Entities {
			out.Entities[k] = append([]string(nil), v...)
		}
	}
	return out
}
