package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/gradecast/internal/adapters/cache"
	"github.com/okian/gradecast/internal/adapters/reportstore"
	"github.com/okian/gradecast/internal/adapters/source"
	app "github.com/okian/gradecast/internal/app"
	"github.com/okian/gradecast/internal/config"
	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/classifier"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/features"
	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use os.Stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if _, err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "analysis failed", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the configured adapters, runs the pipeline once and releases
// every resource it opened.
func run(ctx context.Context, cfg *config.Config) (*report.Report, error) {
	log := logger.Get()

	if cfg.MetricsAddr != "" {
		srv := metricsServer(cfg.MetricsAddr)
		go func() {
			log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}

	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	publishers, closePublishers, err := newPublishers(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closePublishers()

	harness := newHarness(cfg)
	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithSource(src),
		app.WithAggregator(features.NewAggregator(features.WithTemporalFeatures(cfg.TemporalFeatures))),
		app.WithAssembler(abt.NewAssembler()),
		app.WithHarness(harness),
		app.WithExperimenter(newExperimenter(cfg, harness)),
		app.WithPublishers(publishers...),
	)
	return svc.Run(ctx)
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func newSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	switch cfg.Source {
	case config.SourcePostgres:
		pool, err := source.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		src := source.NewPostgresSource(pool,
			source.WithDateLayout(cfg.DateLayout),
			source.WithEventsQuery(cfg.EventsQuery),
			source.WithLabelsQuery(cfg.LabelsQuery),
		)
		return src, pool.Close, nil
	default:
		src, err := source.NewCSVSource(cfg.EventsPath, cfg.LabelsPath, source.WithDateLayout(cfg.DateLayout))
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}
}

func newPublishers(ctx context.Context, cfg *config.Config) ([]app.Publisher, func(), error) {
	var publishers []app.Publisher
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisAddr != "" {
		client := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { _ = client.Close() })
		publishers = append(publishers, cache.New(client, cache.WithTTL(cfg.RedisTTL())))
	}

	if cfg.ReportDSN != "" {
		store, err := reportstore.Open(cfg.ReportDSN)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		if err := store.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		publishers = append(publishers, store)
	}
	return publishers, closeAll, nil
}

func newHarness(cfg *config.Config) *evaluation.Harness {
	seed := cfg.Seed
	families := []classifier.Family{
		{Name: classifier.NameRandomForest, New: func() classifier.Classifier {
			return classifier.NewRandomForest(
				classifier.WithTrees(cfg.ForestTrees),
				classifier.WithMaxDepth(cfg.ForestMaxDepth),
				classifier.WithMinSamplesSplit(cfg.ForestMinSamplesSplit),
				classifier.WithMinSamplesLeaf(cfg.ForestMinSamplesLeaf),
				classifier.WithForestSeed(seed),
			)
		}},
		{Name: classifier.NameLogistic, New: func() classifier.Classifier {
			return classifier.NewLogistic(
				classifier.WithMaxIter(cfg.LogisticMaxIter),
				classifier.WithLearningRate(cfg.LogisticLearningRate),
				classifier.WithC(cfg.LogisticC),
				classifier.WithTolerance(cfg.LogisticTolerance),
			)
		}},
	}
	return evaluation.NewHarness(
		evaluation.WithSeed(seed),
		evaluation.WithTestFraction(cfg.TestFraction),
		evaluation.WithFolds(cfg.CVFolds),
		evaluation.WithFamilies(families...),
	)
}

func newExperimenter(cfg *config.Config, h *evaluation.Harness) *experiment.Experimenter {
	return experiment.NewExperimenter(h,
		experiment.WithRules(experiment.DefaultRules(cfg.TopK, cfg.EngagementTokens, cfg.FrequencyExcludeTokens)...),
		experiment.WithWorkers(cfg.Workers),
	)
}
