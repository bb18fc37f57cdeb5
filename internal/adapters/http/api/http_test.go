package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/r744/internal/adapters/http/api"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	ready bool
	stats map[string]interface{}
}

func (m *mockDeps) Ready() bool                      { return m.ready }
func (m *mockDeps) GetStats() map[string]interface{} { return m.stats }

func serve(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		ctx := context.Background()
		deps := &mockDeps{
			ready: true,
			stats: map[string]interface{}{"started": true, "modelKind": "linear_regression"},
		}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(ctx, mux)

		Convey("When requesting readiness with loaded artifacts", func() {
			w := serve(mux, http.MethodGet, "/readyz")

			Convey("Then it reports ready", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ready"`)
			})
		})

		Convey("When requesting readiness before artifacts are loaded", func() {
			deps.ready = false
			w := serve(mux, http.MethodGet, "/readyz")

			Convey("Then it reports unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "not_ready")
				So(body["message"], ShouldEqual, api.ErrNotReady.Error())
			})
		})

		Convey("When requesting stats", func() {
			w := serve(mux, http.MethodGet, "/stats")

			Convey("Then it returns the provider's stats as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["modelKind"], ShouldEqual, "linear_regression")
			})
		})

		Convey("When posting to stats", func() {
			w := serve(mux, http.MethodPost, "/stats")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When scraping /healthz after traffic", func() {
			serve(mux, http.MethodGet, "/stats")
			w := serve(mux, http.MethodGet, "/healthz")

			Convey("Then it exposes the HTTP metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "r744_advisor_http_requests_total")
				So(strings.Contains(w.Body.String(), `endpoint="stats"`), ShouldBeTrue)
			})
		})
	})
}

func TestServerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering panics", func() {
			So(func() {
				api.NewServer(&mockDeps{}).Register(context.Background(), nil)
			}, ShouldPanic)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		handler := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}, "test")

		Convey("When it answers with an error status", func() {
			req := httptest.NewRequest(http.MethodPost, "/x", http.NoBody)
			w := httptest.NewRecorder()
			handler(w, req)

			Convey("Then the status passes through unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "nope")
			})
		})
	})
}
