package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	CartMaxRequests     = 20 // mutations du panier par minute
	CheckoutMaxRequests = 30
	RateLimitWindow     = 1 * time.Minute
)

// RateLimit compte les requêtes par utilisateur (ou IP) dans une fenêtre fixe.
// Redis indisponible : la requête passe.
func RateLimit(client *redis.Client, scope string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		who := c.GetString("user_id")
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("rate:%s:%s", scope, who)

		requests, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("⚠️ Rate limit %s indisponible: %v", scope, err)
			c.Next()
			return
		}
		// la fenêtre démarre à la première requête
		if requests == 1 {
			client.Expire(ctx, key, window)
		}

		remaining := max - requests
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if requests > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
