package echomw

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/middleware"
)

// Handler runs cmd for each request. Inputs are decoded like middleware.Handler
// does, with echo path params merged last. Validation failures answer 422 with
// the ErrorSet payload; errors returned by Execute go to echo's error handler.
func Handler[T any](cmd *mutations.Command[T], opts ...middleware.Option) echo.HandlerFunc {
	return func(c echo.Context) error {
		bags, err := middleware.Decode(c.Request(), opts...)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		if p := Params(c); len(p) > 0 {
			bags = append(bags, p)
		}
		out, err := cmd.Run(c.Request().Context(), bags...)
		if err != nil {
			if errors.Is(err, mutations.ErrInvalidArgument) {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			return err
		}
		if !out.Success() {
			return c.JSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(out.Errors()))
		}
		return c.JSON(http.StatusOK, map[string]any{"result": out.Result()})
	}
}

// Params returns echo path params as inputs.
func Params(c echo.Context) mutations.Inputs {
	names := c.ParamNames()
	values := c.ParamValues()
	out := make(mutations.Inputs, len(names))
	for i, n := range names {
		if i < len(values) {
			out[n] = values[i]
		}
	}
	return out
}
