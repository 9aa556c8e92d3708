// Command audtext runs the audio transcription and summarization service.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/audtext/component"
	"github.com/skillsenselab/audtext/config"
	"github.com/skillsenselab/audtext/internal/api"
	appcfg "github.com/skillsenselab/audtext/internal/config"
	"github.com/skillsenselab/audtext/internal/janitor"
	"github.com/skillsenselab/audtext/internal/progress"
	"github.com/skillsenselab/audtext/internal/runner"
	"github.com/skillsenselab/audtext/internal/summary"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/llm/ollama"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/observability"
	"github.com/skillsenselab/audtext/server"
	"github.com/skillsenselab/audtext/sse"
	"github.com/skillsenselab/audtext/storage/local"
	"github.com/skillsenselab/audtext/transcription/whisper"
	"github.com/skillsenselab/audtext/version"
)

const serviceName = "audtext"

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	var cfg appcfg.Config
	var loadOpts []config.LoaderOption
	if *configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(*configFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loadOpts...); err != nil {
		logger.Fatal("load config", logger.Fields("error", err.Error()))
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", logger.Fields("error", err.Error()))
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, serviceName)
	logger.SetGlobalLogger(log)

	log.Info("starting", logger.Fields(
		"version", version.GetVersionInfo().Version,
		"environment", cfg.Base.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Observability is optional; without it the otel globals stay noop.
	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    serviceName,
			ServiceVersion: version.GetVersionInfo().Version,
			Environment:    cfg.Base.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			SampleRate:     1.0,
		})
		if err != nil {
			log.Fatal("init tracer", logger.Fields("error", err.Error()))
		}
		defer shutdownWithTimeout(tp.Shutdown)

		mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    serviceName,
			ServiceVersion: version.GetVersionInfo().Version,
			Environment:    cfg.Base.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			Interval:       cfg.Observability.Interval,
		})
		if err != nil {
			log.Fatal("init meter", logger.Fields("error", err.Error()))
		}
		defer shutdownWithTimeout(mp.Shutdown)

		metrics, err = observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			log.Fatal("init metrics", logger.Fields("error", err.Error()))
		}
	}

	files, err := local.NewStorage(cfg.Upload.Dir)
	if err != nil {
		log.Fatal("init storage", logger.Fields("error", err.Error()))
	}

	store := task.NewStore()
	sseComponent := sse.NewComponent()
	sink := progress.NewHubSink(sseComponent.Hub())

	transcriber := whisper.NewProvider(cfg.Whisper)
	run := runner.New(cfg.Runner, store, sink, transcriber, files, metrics)
	summarizer := summary.NewSummarizer(ollama.NewProvider(cfg.Ollama))

	srv := server.New(cfg.Server, log)

	registry := component.NewRegistry()
	for _, c := range []component.Component{
		sseComponent,
		janitor.New(cfg.Janitor, files),
	} {
		if err := registry.Register(c); err != nil {
			log.Fatal("register component", logger.Fields("name", c.Name(), "error", err.Error()))
		}
	}

	srv.ApplyDefaults(serviceName, registry.HealthAll)
	api.New(cfg.Upload, store, run, summarizer, sseComponent.Hub(), files, metrics).
		RegisterRoutes(srv.GinEngine())

	if err := registry.StartAll(ctx); err != nil {
		log.Fatal("start components", logger.Fields("error", err.Error()))
	}
	if err := srv.Start(ctx); err != nil {
		log.Fatal("start server", logger.Fields("error", err.Error()))
	}

	if !transcriber.IsAvailable(ctx) {
		log.Warn("transcription backend unreachable", logger.Fields("url", cfg.Whisper.URL))
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("server stop", logger.Fields("error", err.Error()))
	}

	// Let in-flight transcriptions finish before tearing down the hub.
	run.Wait()

	if err := registry.StopAll(shutdownCtx); err != nil {
		log.Error("stop components", logger.Fields("error", err.Error()))
	}

	log.Info("shutdown complete")
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown", logger.Fields("error", err.Error()))
	}
}
