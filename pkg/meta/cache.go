package meta

import (
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"

	"github.com/stationly/stationly/pkg/redis_client"
	"github.com/stationly/stationly/pkg/repository"
)

// Reference data barely moves; half a day keeps TfL traffic near zero.
const cacheExpiration = 12 * time.Hour

// NewService wires the metadata layer against the shared Redis cache and
// Mongo persistence. The caller supplies the upstream client so every service
// in a process shares one rate limiter.
func NewService(api API) *Service {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(cacheExpiration))

	return &Service{
		API:   api,
		Cache: cache.New[string](redisStore),

		Modes:  repository.Modes(),
		Lines:  repository.Lines(),
		Routes: repository.LineRoutes(),
	}
}
