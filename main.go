package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/handlers"
	"video-library/internal/library"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/mediatypes"
	"video-library/internal/memory"
	"video-library/internal/metrics"
	"video-library/internal/middleware"
	"video-library/internal/startup"
	"video-library/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxFanoutWorkers caps concurrent thumbnail/duration resolutions per query.
const maxFanoutWorkers = 32

// app holds the components built from the configuration.
type app struct {
	config     *startup.Config
	thumbnails *media.ThumbnailCache
	handlers   *handlers.Handlers
	workers    int
}

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	memory.Configure(os.Getenv)

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"videos":     config.VideoDir,
		"thumbnails": config.CacheDir,
	}))
	metrics.InitializeMetrics()

	a, err := newApp(config)
	if err != nil {
		startup.LogFatal("Failed to initialize library: %v", err)
	}
	startup.LogLibraryInit(config, a.workers)

	collector := metrics.NewCollector(a.thumbnails, config.CollectInterval)
	collector.Start()

	router := setupRouter(a.handlers, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           buildHandler(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // video responses may stream for a long time
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// newApp wires the library, media and handler components together.
func newApp(config *startup.Config) (*app, error) {
	retry := filesystem.DefaultRetryConfig()

	translator, err := library.NewTranslator(config.VideoDir, config.PublicPrefix)
	if err != nil {
		return nil, err
	}
	cacheDir := filepath.Join(translator.Root(), filepath.Base(config.CacheDir))

	thumbnails := media.NewThumbnailCache(media.ThumbnailConfig{
		CacheDir:     cacheDir,
		PublicPrefix: config.ThumbnailPrefix,
		FFmpegPath:   config.FFmpegPath,
		Offset:       config.ThumbnailOffset,
		Width:        config.ThumbnailWidth,
		Height:       config.ThumbnailHeight,
		Timeout:      config.FFmpegTimeout,
		Retry:        retry,
	})
	prober := media.NewProber(config.FFprobePath, config.FFprobeTimeout)

	n := workers.ForIO(config.FanoutWorkers, maxFanoutWorkers)
	scanner := library.NewScanner(translator, cacheDir)
	service := library.NewService(scanner, thumbnails, prober, library.ServiceOptions{
		DefaultLimit: config.DefaultLimit,
		Workers:      n,
	})
	mutator := library.NewMutator(translator, thumbnails, cacheDir, retry)

	h := handlers.New(service, mutator, handlers.Status{
		VideoDir:         config.VideoDir,
		ThumbnailsOn:     config.ThumbnailsEnabled,
		FFmpegAvailable:  config.FFmpegAvailable,
		FFprobeAvailable: config.FFprobeAvailable,
	})

	return &app{
		config:     config,
		thumbnails: thumbnails,
		handlers:   h,
		workers:    n,
	}, nil
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/videos/rename", h.RenameVideo).Methods("PUT")
	api.HandleFunc("/videos/delete", h.DeleteVideo).Methods("DELETE")

	// Static files. Thumbnails are registered first so their prefix wins.
	r.PathPrefix(config.ThumbnailPrefix + "/").Handler(staticFiles(config.ThumbnailPrefix, config.CacheDir))
	r.PathPrefix(config.PublicPrefix + "/").Handler(staticFiles(config.PublicPrefix, config.VideoDir))

	return r
}

// staticFiles serves dir under prefix without directory listings.
func staticFiles(prefix, dir string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		if mediatypes.IsVideo(r.URL.Path) {
			w.Header().Set("Content-Type", mediatypes.GetMimeType(r.URL.Path))
		}
		fs.ServeHTTP(w, r)
	})
}

// buildHandler wraps the router in the middleware chain, outermost first:
// compression, CORS, request ID, logging, metrics.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	metricsConfig := middleware.DefaultMetricsConfig()
	metricsConfig.StaticPrefixes = []string{config.ThumbnailPrefix}
	if config.PublicPrefix != "" {
		metricsConfig.StaticPrefixes = append(metricsConfig.StaticPrefixes, config.PublicPrefix)
	}
	handler := middleware.Metrics(metricsConfig)(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	handler = middleware.RequestID(handler)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = config.CORSOrigins
	handler = middleware.CORS(corsConfig)(handler)

	return middleware.Compression(middleware.DefaultCompressionConfig())(handler)
}

func newMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
