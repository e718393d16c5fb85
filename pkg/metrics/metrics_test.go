package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should use the options", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})

			Convey("Then its metrics are registered there", func() {
				manager.matchupsServed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "compare")
				So(manager.subsystem, ShouldEqual, "ranking")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording match outcomes", func() {
			before := testutil.ToFloat64(globalManager.matchesRecorded.WithLabelValues(OutcomeDuplicate))
			RecordMatch(OutcomeDuplicate)

			Convey("Then the labelled counter grows", func() {
				after := testutil.ToFloat64(globalManager.matchesRecorded.WithLabelValues(OutcomeDuplicate))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When updating pool gauges", func() {
			UpdatePoolSize(12)
			UpdateMeanCertainty(0.25)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.poolSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.meanCertainty), ShouldEqual, 0.25)
			})
		})

		Convey("When replaying matches", func() {
			before := testutil.ToFloat64(globalManager.replayedMatches)
			RecordReplayedMatches(7)

			Convey("Then the counter grows by the batch size", func() {
				So(testutil.ToFloat64(globalManager.replayedMatches)-before, ShouldEqual, 7)
			})
		})

		Convey("When recording store errors", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("redis", "load_songs"))
			RecordStoreError("redis", "load_songs")

			Convey("Then they are counted per backend and operation", func() {
				after := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("redis", "load_songs"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording observations", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordMatchupServed()
					RecordMatchupCandidates(3)
					RecordMatchupLatency(0.002)
					RecordStoreOperation("memory", "append_match", 0.0001)
					RecordHTTPRequest("/matchup", "GET", "200")
					RecordHTTPRequestDuration("/matchup", "GET", "200", 0.01)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(8)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
