package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/swanstudios/formsight/internal/config"
	"github.com/swanstudios/formsight/internal/formanalysis"
	formsightmcp "github.com/swanstudios/formsight/internal/formanalysis/mcp"
	"github.com/swanstudios/formsight/internal/middleware"
	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"
	"github.com/swanstudios/formsight/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config          *config.Config
	model           *pose.InferenceAPI
	extractor       *pose.Extractor
	store           *sessions.Store
	analysisService *formanalysis.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("formsight", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "formsight")
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	model := pose.NewInferenceAPI(params.Config.PoseAPIURL, tracedHttpClient)

	// background warm-up so the first Start call does not pay the model load;
	// a failure here is not fatal, Start retries the load lazily
	go func() {
		if err := model.Load(ctx); err != nil {
			log.Warnf("background pose model warm-up failed: %s", err)
			return
		}
		metricsManager.GaugeModelLoaded.Set(1)
		log.Debugln("pose model warmed up")
	}()

	extractor := pose.NewExtractor(pose.ExtractorParams{
		Model:               model,
		ConfidenceThreshold: params.Config.ConfidenceThreshold,
		IOUThreshold:        params.Config.IOUThreshold,
		InferenceTimeout:    time.Duration(params.Config.InferenceTimeoutSeconds) * time.Second,
		MetricsManager:      metricsManager,
	})

	store := sessions.NewStore(sessions.StoreParams{
		MaxSessions:    params.Config.MaxActiveSessions,
		MaxPoseHistory: params.Config.FrameBufferSize,
		MetricsManager: metricsManager,
	})

	return &Server{
		config:          params.Config,
		versionInfo:     params.VersionInfo,
		model:           model,
		extractor:       extractor,
		store:           store,
		analysisService: formanalysis.NewService(store, model, metricsManager),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("formsight-router"))

	analysisHandler := formanalysis.NewHandler(s.analysisService, s.store, s.model)
	analysisHandler.SetupRoutes(r)

	streamHandler := formanalysis.NewStreamHandler(
		s.store,
		s.extractor,
		formanalysis.NewAnalyzer(s.metricsManager),
		s.metricsManager,
	)
	r.HandleFunc("/ws/form-analysis/{sessionId}", streamHandler.HandleStream).
		Methods("GET").Name("form-analysis-stream")

	// same lifecycle tools, mounted as an MCP server
	mcpServer := formsightmcp.NewServer(s.analysisService)
	r.PathPrefix("/mcp").Handler(mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return mcpServer },
		nil,
	))

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	// stop all analysis sessions and close their streams before the listener
	// goes away, so every client gets a clean close
	s.analysisService.Shutdown()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
