package ginmw

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/middleware"
)

// Handler runs cmd for each request. Inputs are decoded like middleware.Handler
// does, with gin path params merged last. Validation failures answer 422 with
// the ErrorSet payload; errors returned by Execute are attached to the context
// and answered with 500.
func Handler[T any](cmd *mutations.Command[T], opts ...middleware.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		bags, err := middleware.Decode(c.Request, opts...)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if p := Params(c); len(p) > 0 {
			bags = append(bags, p)
		}
		out, err := cmd.Run(c.Request.Context(), bags...)
		if err != nil {
			if errors.Is(err, mutations.ErrInvalidArgument) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !out.Success() {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(out.Errors()))
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": out.Result()})
	}
}

// Params returns gin path params as inputs.
func Params(c *gin.Context) mutations.Inputs {
	out := make(mutations.Inputs, len(c.Params))
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	return out
}
