package echomw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
	echomw "github.com/reoring/mutations/middleware/echo"
)

func greetCommand() *mutations.Command[string] {
	schema := dsl.MustBuild(dsl.Required(dsl.String("id"), dsl.String("name").MaxLength(5)))
	return mutations.New("greet", schema, func(ctx context.Context, x *mutations.Execution) (string, error) {
		return x.Inputs().String("id") + ":" + x.Inputs().String("name"), nil
	})
}

func serve(body string) *httptest.ResponseRecorder {
	e := echo.New()
	e.POST("/greet/:id", echomw.Handler(greetCommand()))
	req := httptest.NewRequest(http.MethodPost, "/greet/7", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	rec := serve(`{"name":"Ann","id":"spoofed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"result":"7:Ann"`) {
		t.Fatalf("path params must win: %s", rec.Body.String())
	}

	rec = serve(`{"name":"Annabel"}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), `"name":"length"`) {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(`{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}
