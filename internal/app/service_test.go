package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/r744/internal/artifact"
	service "github.com/okian/r744/internal/app"
	"github.com/okian/r744/internal/domain/features"
	"github.com/okian/r744/internal/domain/inference"
	"github.com/okian/r744/internal/domain/session"
	"github.com/okian/r744/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const scalerJSON = `{
  "kind": "standard_scaler",
  "feature_names": ["DBT", "WBT", "Build. Load", "RSH", "RSC"],
  "mean": [30, 22, 5, 4, 6],
  "scale": [6, 4, 8, 2, 3]
}`

const modelJSON = `{"kind": "linear_regression", "coef": [6.5, 1.2, 0.8, -0.4, 0.3], "intercept": 95.0}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestServiceStart(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given artifact files", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		scalerPath := writeFile(t, dir, "scaler.json", scalerJSON)
		modelPath := writeFile(t, dir, "model.json", modelJSON)

		Convey("When both artifacts are valid", func() {
			svc := service.New(service.WithArtifactPaths(scalerPath, modelPath))
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then the service becomes ready", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stats describe the loaded artifacts", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["scalerKind"], ShouldEqual, artifact.KindStandardScaler)
				So(stats["modelKind"], ShouldEqual, artifact.KindLinearRegression)
				So(stats["features"], ShouldResemble, features.Names())
			})
		})

		Convey("When the model artifact is missing", func() {
			svc := service.New(service.WithArtifactPaths(scalerPath, filepath.Join(dir, "absent.json")))
			err := svc.Start(ctx)

			Convey("Then startup fails and no prediction can be attempted", func() {
				So(errors.Is(err, service.ErrStartup), ShouldBeTrue)
				So(errors.Is(err, artifact.ErrReadArtifact), ShouldBeTrue)
				So(svc.Ready(), ShouldBeFalse)

				_, err := svc.Predict(ctx, session.NewID(), features.Default())
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When the scaler artifact is corrupt", func() {
			corrupt := writeFile(t, dir, "corrupt.json", "\x80\x04\x95 not json")
			svc := service.New(service.WithArtifactPaths(corrupt, modelPath))
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(errors.Is(err, artifact.ErrDecodeArtifact), ShouldBeTrue)
				So(svc.Ready(), ShouldBeFalse)
			})
		})

		Convey("When the artifacts disagree on dimensionality", func() {
			wide := writeFile(t, dir, "wide.json", `{"kind":"linear_regression","coef":[1,2,3,4,5,6]}`)
			svc := service.New(service.WithArtifactPaths(scalerPath, wide))
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(errors.Is(err, inference.ErrDimensionMismatch), ShouldBeTrue)
			})
		})
	})
}

func TestServicePredict(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		svc := service.New(
			service.WithArtifactPaths(
				writeFile(t, dir, "scaler.json", scalerJSON),
				writeFile(t, dir, "model.json", modelJSON),
			),
			service.WithSessionCapacity(8),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		id := session.NewID()

		Convey("When a new session opens the form", func() {
			st := svc.Form(ctx, id)

			Convey("Then it sees the defaults", func() {
				So(st.Record, ShouldResemble, features.Default())
				So(st.Predictions, ShouldEqual, 0)
			})
		})

		Convey("When the session predicts with edited values", func() {
			rec := features.Default()
			rec.DryBulbC = 20
			res, err := svc.Predict(ctx, id, rec)

			Convey("Then the result carries the advisory", func() {
				So(err, ShouldBeNil)
				So(res.Advisory, ShouldBeTrue)
			})

			Convey("And the session remembers the values", func() {
				st := svc.Form(ctx, id)
				So(st.Record, ShouldResemble, rec)
				So(st.Predictions, ShouldEqual, 1)
			})

			Convey("And other sessions keep the defaults", func() {
				So(svc.Form(ctx, session.NewID()).Record, ShouldResemble, features.Default())
			})
		})

		Convey("When the same inputs are predicted twice", func() {
			a, err := svc.Predict(ctx, id, features.Default())
			So(err, ShouldBeNil)
			b, err := svc.Predict(ctx, session.NewID(), features.Default())
			So(err, ShouldBeNil)

			Convey("Then the results are identical", func() {
				So(a, ShouldResemble, b)
				So(a.Advisory, ShouldBeFalse)
			})
		})
	})
}
