package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/cinemind/internal/config"
	"github.com/okian/cinemind/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func newRemote() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/recommend/all" {
			_, _ = w.Write([]byte(`["Inception","Amelie","Heat","Alien","Tenet","Memento"]`))
			return
		}
		_, _ = w.Write([]byte(`{"recommendations":["Dunkirk"]}`))
	}))
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration pointing at a recommendation service", t, func() {
		remote := newRemote()
		defer remote.Close()

		_ = os.Setenv("CINEMIND_RECOMMENDER_URL", remote.URL)
		_ = os.Setenv("CINEMIND_MAX_SESSIONS", "3")
		defer func() {
			_ = os.Unsetenv("CINEMIND_RECOMMENDER_URL")
			_ = os.Unsetenv("CINEMIND_MAX_SESSIONS")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc))
		defer srv.Close()

		convey.Convey("When a visitor signs in", func() {
			resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			loc := resp.Header.Get("Location")

			resp, err = http.Post(srv.URL+loc+"/auth", "application/json", strings.NewReader(`{}`))
			convey.So(err, convey.ShouldBeNil)
			raw, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			convey.Convey("Then onboarding is served from the remote catalog", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(raw), convey.ShouldContainSubstring, `"page":"onboarding"`)
				convey.So(string(raw), convey.ShouldContainSubstring, "Inception")
				convey.So(svc.GetStats(ctx).MaxSessions, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the API reference is requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		remote := newRemote()
		defer remote.Close()

		cfg := config.New(context.Background())
		cfg.RecommenderURL = remote.URL
		svc := newService(cfg, logger.Get())

		convey.Convey("When the metric updaters run until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When metrics are updated directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
		})
	})
}
