package middlewares

import (
	"strconv"

	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorMiddleware copies the actor headers into the request context so every
// workflow write records who asked for it. X-Correlation-Id is taken from the
// caller when present, otherwise minted here; either way the response echoes
// it so retries can reuse the same id.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := c.Request.Header.Get("X-Actor-Id"); raw != "" {
			if actorId, err := strconv.Atoi(raw); err == nil {
				ctx = utils.SetActorIdInContext(ctx, actorId)
			}
		}
		if actorName := c.Request.Header.Get("X-Actor-Name"); actorName != "" {
			ctx = utils.SetActorNameInContext(ctx, actorName)
		}

		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
