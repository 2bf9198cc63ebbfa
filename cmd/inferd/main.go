package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/manager"
	"inferd/internal/registry"
	"inferd/internal/source"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envOr("INFERD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	modelsDir := flag.String("models-dir", envOr("INFERD_MODELS_DIR", "~/models/llm"), "Directory to scan for model files and bundles")
	defaultModel := flag.String("default-model", envOr("INFERD_DEFAULT_MODEL", ""), "Default model id when request omits model")
	srcName := flag.String("source", envOr("INFERD_SOURCE", "scripted"), "Generation source: scripted or llama")
	maxEngines := flag.Int("max-engines", envOrInt("INFERD_MAX_ENGINES", 0), "Max resident engines (0=default)")
	maxWaitMS := flag.Int("max-wait-ms", envOrInt("INFERD_MAX_WAIT_MS", 0), "Max wait for a concurrent load of the same model (0=default)")
	shutdownTimeoutMS := flag.Int("shutdown-timeout-ms", envOrInt("INFERD_SHUTDOWN_TIMEOUT_MS", 5000), "Per-engine worker join timeout on shutdown")
	streamDelayMS := flag.Int("stream-delay-ms", envOrInt("INFERD_STREAM_DELAY_MS", 0), "Scripted source inter-fragment delay")
	maxBodyBytes := flag.Int64("max-body-bytes", int64(envOrInt("INFERD_MAX_BODY_BYTES", 0)), "Request body cap in bytes (0=default)")
	generateTimeoutSec := flag.Int64("generate-timeout-sec", int64(envOrInt("INFERD_GENERATE_TIMEOUT_SEC", 0)), "Per-request generation timeout (0=off)")
	logLevel := flag.String("log-level", envOr("INFERD_LOG_LEVEL", "info"), "Log level: trace, debug, info, warn, error")
	corsEnabled := flag.Bool("cors", envOr("INFERD_CORS", "") == "1", "Enable CORS middleware")
	corsOrigins := flag.String("cors-origins", envOr("INFERD_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins")
	llamaCtx := flag.Int("llama-ctx", envOrInt("INFERD_LLAMA_CTX", 0), "llama context window in tokens (0=default)")
	llamaThreads := flag.Int("llama-threads", envOrInt("INFERD_LLAMA_THREADS", 0), "llama worker threads (0=default)")
	cfgPath := flag.String("config", envOr("INFERD_CONFIG", ""), "Optional config file (.toml/.yaml/.json); explicit flags win")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Config file values fill in anything not set explicitly on the
	// command line.
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *cfgPath).Msg("load config")
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["addr"] && cfg.Addr != "" {
			*addr = cfg.Addr
		}
		if !set["models-dir"] && cfg.ModelsDir != "" {
			*modelsDir = cfg.ModelsDir
		}
		if !set["default-model"] && cfg.DefaultModel != "" {
			*defaultModel = cfg.DefaultModel
		}
		if !set["source"] && cfg.Source != "" {
			*srcName = cfg.Source
		}
		if !set["max-engines"] && cfg.MaxEngines != 0 {
			*maxEngines = cfg.MaxEngines
		}
		if !set["max-wait-ms"] && cfg.MaxWaitMS != 0 {
			*maxWaitMS = cfg.MaxWaitMS
		}
		if !set["shutdown-timeout-ms"] && cfg.ShutdownTimeoutMS != 0 {
			*shutdownTimeoutMS = cfg.ShutdownTimeoutMS
		}
		if !set["stream-delay-ms"] && cfg.StreamDelayMS != 0 {
			*streamDelayMS = cfg.StreamDelayMS
		}
		if !set["max-body-bytes"] && cfg.MaxBodyBytes != 0 {
			*maxBodyBytes = cfg.MaxBodyBytes
		}
		if !set["log-level"] && cfg.LogLevel != "" {
			*logLevel = cfg.LogLevel
		}
		if !set["cors"] && cfg.CORSEnabled {
			*corsEnabled = true
		}
		if !set["cors-origins"] && len(cfg.CORSOrigins) > 0 {
			*corsOrigins = strings.Join(cfg.CORSOrigins, ",")
		}
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Warn().Str("level", *logLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	logger = logger.Level(lvl)

	models, err := registry.LoadDir(*modelsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *modelsDir).Msg("load models")
	}
	if *defaultModel != "" {
		if _, ok := registry.Find(models, *defaultModel); !ok {
			logger.Warn().Str("model", *defaultModel).Msg("default model not present in models dir")
		}
	}

	src, err := source.ForName(*srcName, source.Options{
		StreamDelay: time.Duration(*streamDelayMS) * time.Millisecond,
		CtxSize:     *llamaCtx,
		Threads:     *llamaThreads,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("configure source")
	}
	if *srcName == "llama" && !source.LlamaBuilt() {
		logger.Warn().Msg("llama source requested but binary built without -tags=llama; loads will fail")
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:        models,
		DefaultModel:    *defaultModel,
		Source:          src,
		MaxEngines:      *maxEngines,
		MaxWait:         time.Duration(*maxWaitMS) * time.Millisecond,
		ShutdownTimeout: time.Duration(*shutdownTimeoutMS) * time.Millisecond,
		Publisher:       engine.NewLogPublisher(logger),
		Logger:          &logger,
	})

	baseCtx, baseCancel := context.WithCancel(context.Background())
	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(*maxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(*generateTimeoutSec)
	httpapi.SetCORSOptions(*corsEnabled, splitCSV(*corsOrigins), nil, nil)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", *addr).
			Str("models_dir", *modelsDir).
			Str("source", *srcName).
			Int("models", len(models)).
			Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	// Cancel in-flight generations first so streaming handlers drain.
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	if err := mgr.Close(); err != nil {
		if engine.IsResourceLeak(err) {
			logger.Error().Err(err).Msg("engine resources leaked at exit")
		} else {
			logger.Error().Err(err).Msg("manager close")
		}
	}
	logger.Info().Msg("stopped")
}
