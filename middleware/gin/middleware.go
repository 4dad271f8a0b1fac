package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/middleware"
	"github.com/Azhovan/sieve/sourcehttp"
)

// Query validates the query string using schema, stores the value in the request context,
// and on failure responds with the error payload and aborts the chain.
func Query[T any](schema sieve.Schema[T], opts sieve.Options) gin.HandlerFunc {
	return validate(schema, opts, func(c *gin.Context) sieve.Source {
		return sourcehttp.Query(c.Request)
	})
}

// Body validates the request body using schema.
func Body[T any](schema sieve.Schema[T], opts sieve.Options) gin.HandlerFunc {
	return validate(schema, opts, func(c *gin.Context) sieve.Source {
		return sourcehttp.Body(c.Request)
	})
}

func validate[T any](schema sieve.Schema[T], opts sieve.Options, source func(*gin.Context) sieve.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := sieve.Validate(c.Request.Context(), schema, source(c), opts)
		if err != nil {
			p := middleware.ErrorPayload(err)
			c.AbortWithStatusJSON(p.StatusCode, p)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), v))
		c.Next()
	}
}

// Value fetches the validated T from gin.Context.
func Value[T any](c *gin.Context) (T, bool) {
	return middleware.ValueFromContext[T](c.Request.Context())
}
