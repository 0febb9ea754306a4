package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. With a redis client the counters
// are shared across instances; without one they live in process memory.
func RateLimiter(rdb *libredis.Client) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  100,
	}

	var store limiter.Store
	if rdb != nil {
		var err error
		store, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix:   "ledgerly_ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			log.Printf("redis rate limit store unavailable, using memory store: %v", err)
			store = memory.NewStore()
		}
	} else {
		store = memory.NewStore()
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
