package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	app "github.com/okian/r744/internal/app"
	"github.com/okian/r744/internal/config"
	"github.com/okian/r744/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func sampleConfig() *config.Config {
	cfg := config.New()
	cfg.ScalerPath = "../artifacts/scaler.json"
	cfg.ModelPath = "../artifacts/model.json"
	cfg.ImagePath = "../assets/ac.svg"
	return cfg
}

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	convey.Convey("Given a configuration pointing at a missing model", t, func() {
		cfg := sampleConfig()
		cfg.ModelPath = "../artifacts/does-not-exist.json"

		convey.Convey("When running the advisor", func() {
			err := run(context.Background(), cfg)

			convey.Convey("Then startup fails before serving", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, app.ErrStartup), convey.ShouldBeTrue)
			})
		})
	})
}

func TestMux(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	convey.Convey("Given the bundled sample artifacts", t, func() {
		ctx := context.Background()
		cfg := sampleConfig()
		svc := app.New(
			app.WithArtifactPaths(cfg.ScalerPath, cfg.ModelPath),
			app.WithSessionCapacity(cfg.SessionCapacity),
			app.WithSessionTTL(cfg.SessionTTL()),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, cfg, svc, logger.Get()))
		defer srv.Close()

		convey.Convey("When the form page is requested", func() {
			resp, err := http.Get(srv.URL + "/")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it renders", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("Content-Type"), convey.ShouldStartWith, "text/html")
			})
		})

		convey.Convey("When the default values are submitted", func() {
			form := url.Values{
				"dbt":           {"35"},
				"wbt":           {"25"},
				"building_load": {"10"},
				"rsh":           {"5"},
				"rsc":           {"8"},
			}
			resp, err := http.PostForm(srv.URL+"/predict", form)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			convey.So(err, convey.ShouldBeNil)
			page := string(body)

			convey.Convey("Then the sample model predicts 100.50 bar", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(page, convey.ShouldContainSubstring, "100.50 bar")
				convey.So(page, convey.ShouldNotContainSubstring, `id="advisory"`)
			})
		})

		convey.Convey("When the operational routes are probed", func() {
			for _, path := range []string{"/healthz", "/readyz", "/stats", "/media/hero", "/static/style.css", "/openapi.yaml"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				_ = resp.Body.Close()
			}
		})
	})
}
