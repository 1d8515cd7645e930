package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterFramesProcessed    prometheus.Counter
	CounterPosesDetected      prometheus.Counter
	CounterFrameDecodeErrors  prometheus.Counter
	CounterAnalysisErrors     prometheus.Counter
	CounterSessionsStarted    prometheus.Counter
	CounterSessionsEvicted    prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeActiveSessions prometheus.Gauge
	GaugeOpenStreams    prometheus.Gauge
	GaugeModelLoaded    prometheus.Gauge
	GaugeLifeSignal     prometheus.Gauge

	// histograms
	HistInferenceDuration    prometheus.Histogram
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("formsight", "test_server", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterFramesProcessed := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_processed",
		Help:      "The total number of streamed frames processed",
	})
	counterPosesDetected := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "poses_detected",
		Help:      "The total number of frames with a detected pose",
	})
	counterFrameDecodeErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frame_decode_errors",
		Help:      "The total number of frames that failed to decode",
	})
	counterAnalysisErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analysis_errors",
		Help:      "The total number of exercise analyses that hit the error fallback",
	})
	counterSessionsStarted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_started",
		Help:      "The total number of analysis sessions started",
	})
	counterSessionsEvicted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_evicted",
		Help:      "The total number of inactive sessions evicted at capacity",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests",
		Help:      "Current number of open connections",
	})
	gaugeActiveSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_sessions",
		Help:      "Current number of active analysis sessions",
	})
	gaugeOpenStreams := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_streams",
		Help:      "Current number of open streaming connections",
	})
	gaugeModelLoaded := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "model_loaded",
		Help:      "Whether the pose model is loaded (1) or not (0)",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histInferenceDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "inference_duration_seconds",
		Help:      "Duration of a single pose inference call in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		CounterFramesProcessed:    counterFramesProcessed,
		CounterPosesDetected:      counterPosesDetected,
		CounterFrameDecodeErrors:  counterFrameDecodeErrors,
		CounterAnalysisErrors:     counterAnalysisErrors,
		CounterSessionsStarted:    counterSessionsStarted,
		CounterSessionsEvicted:    counterSessionsEvicted,
		GaugeRequests:             gaugeRequests,
		GaugeActiveSessions:       gaugeActiveSessions,
		GaugeOpenStreams:          gaugeOpenStreams,
		GaugeModelLoaded:          gaugeModelLoaded,
		GaugeLifeSignal:           gaugeLifeSignal,
		HistInferenceDuration:     histInferenceDuration,
		HistogramRequestDuration:  histogramRequestDuration,
	}
}
