package main

import (
	"context"
	"fmt"
	"net/http"

	"hearingwatch/committees"
	"hearingwatch/common"
	"hearingwatch/config"
	"hearingwatch/export"
	"hearingwatch/ingestion"
	"hearingwatch/logging"
	"hearingwatch/metrics"
	"hearingwatch/notify"
	"hearingwatch/orchestrator"
	"hearingwatch/rssfeeds"
	"hearingwatch/storage"
	"hearingwatch/video"

	"go.uber.org/zap"
)

// application holds everything a command needs, built from one Config.
type application struct {
	logger       *zap.Logger
	store        storage.Store
	metrics      *metrics.Recorder
	notifier     notify.Notifier
	orchestrator *orchestrator.Orchestrator
}

func bootstrap(ctx context.Context, cfg *config.Config) (*application, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.NewRedisStore(storage.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	})
	if err != nil {
		return nil, err
	}

	a := &application{logger: logger, store: store, metrics: metrics.NewRecorder(), notifier: notify.Nop{}}

	platform, err := video.NewYouTube(ctx, cfg.GoogleAPIKey)
	if err != nil {
		a.Close()
		return nil, err
	}

	sinks, err := exportSinks(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if len(cfg.KafkaBrokers) > 0 {
		k, err := notify.NewKafka(notify.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			logger.Warn("kafka notifications disabled", zap.Error(err))
		} else {
			a.notifier = k
		}
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	a.orchestrator = orchestrator.New(orchestrator.Deps{
		Committees: committees.NewSource(cfg.CommitteesListURL, httpClient, cfg.HTTPTimeout),
		Ingester: ingestion.NewIngestor(store, rssfeeds.NewFetcher(httpClient, cfg.HTTPTimeout), cfg.FeedTimezone, logger,
			ingestion.WithMetrics(a.metrics)),
		Matcher:        video.NewMatcher(store, platform, logger, video.WithMatchMetrics(a.metrics)),
		Store:          store,
		Exporter:       export.NewExporter(logger, sinks...),
		Notifier:       a.notifier,
		Metrics:        a.metrics,
		PushgatewayURL: cfg.PushgatewayURL,
		Logger:         logger,
	})
	return a, nil
}

// exportSinks builds a sink for every configured destination. The local file
// is always written.
func exportSinks(ctx context.Context, cfg *config.Config) ([]export.Sink, error) {
	sinks := []export.Sink{export.FileSink{Path: cfg.ExportPath}}

	if cfg.S3Bucket != "" {
		s3c, err := common.NewS3(ctx, common.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3: %w", err)
		}
		sinks = append(sinks, export.ObjectSink{Store: s3c, Key: cfg.S3Prefix + config.ExportObjectName})
	}

	if cfg.SheetsEnabled() {
		sheets, err := export.NewSheetsSink(ctx, cfg.ServiceAccountKeyPath, cfg.SpreadsheetID, cfg.SheetID)
		if err != nil {
			return nil, fmt.Errorf("init sheets: %w", err)
		}
		sinks = append(sinks, sheets)
	}
	return sinks, nil
}

func (a *application) Close() {
	if err := a.notifier.Close(); err != nil {
		a.logger.Warn("failed to close notifier", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
