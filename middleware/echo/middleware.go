package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/Azhovan/sieve"
	"github.com/Azhovan/sieve/middleware"
	"github.com/Azhovan/sieve/sourcehttp"
)

// Query validates the query string via schema, stores the value in the request context on
// success, or responds with the error payload when validation fails.
func Query[T any](schema sieve.Schema[T], opts sieve.Options) echo.MiddlewareFunc {
	return validate(schema, opts, func(c echo.Context) sieve.Source {
		return sourcehttp.Query(c.Request())
	})
}

// Body validates the request body via schema. The body is decoded by Content-Type.
func Body[T any](schema sieve.Schema[T], opts sieve.Options) echo.MiddlewareFunc {
	return validate(schema, opts, func(c echo.Context) sieve.Source {
		return sourcehttp.Body(c.Request())
	})
}

func validate[T any](schema sieve.Schema[T], opts sieve.Options, source func(echo.Context) sieve.Source) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := sieve.Validate(c.Request().Context(), schema, source(c), opts)
			if err != nil {
				p := middleware.ErrorPayload(err)
				return c.JSON(p.StatusCode, p)
			}
			ctx := middleware.ContextWithValue(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Value fetches the validated T from echo.Context.
func Value[T any](c echo.Context) (T, bool) {
	return middleware.ValueFromContext[T](c.Request().Context())
}
