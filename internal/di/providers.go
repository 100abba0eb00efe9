package di

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/repository"
	"CoinSight/internal/handler/api"
	internalrepo "CoinSight/internal/repository"
	icache "CoinSight/internal/service/cache"
	"CoinSight/internal/services/indicators"
	"CoinSight/internal/services/marketdata"
	"CoinSight/internal/services/onchain"
	"CoinSight/internal/usecase"
	pkgch "CoinSight/pkg/clickhouse"
	"CoinSight/pkg/config"
	xhttp "CoinSight/pkg/http"
	pkgkafka "CoinSight/pkg/kafka"
	applogger "CoinSight/pkg/logger"
	"CoinSight/pkg/metrics"
	"CoinSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// results schema. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideResultStore creates the ClickHouse result store, or nil when
// persistence is disabled.
func ProvideResultStore(chClient *pkgch.Client) *internalrepo.CHResultStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewCHResultStore(chClient)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideResultPublisher adapts the producer into a ResultPublisher.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideQuoteStream creates the live quote stream, or nil when disabled.
func ProvideQuoteStream(cfg *config.Config, l *applogger.Logger) *marketdata.Stream {
	if !cfg.Exchange.StreamEnabled {
		return nil
	}
	symbols := cfg.Exchange.StreamSymbols
	if len(symbols) == 0 {
		symbols = cfg.Analyzer.Watchlist
	}
	return marketdata.NewStream(marketdata.StreamConfig{
		WebSocketURL:   cfg.Exchange.WebSocketURL,
		Symbols:        symbols,
		ReconnectDelay: cfg.Exchange.ReconnectDelay,
		PingInterval:   cfg.Exchange.PingInterval,
	}, l)
}

// ProvideMarketData creates the exchange data provider, stream-backed
// when the quote stream is enabled.
func ProvideMarketData(cfg *config.Config, stream *marketdata.Stream) repository.MarketData {
	rest := marketdata.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.Timeout, cfg.Exchange.RateLimitRPS)
	if stream != nil {
		return marketdata.NewStreamingProvider(rest, stream)
	}
	return rest
}

// ProvideOnchainData creates the onchain data provider.
func ProvideOnchainData(cfg *config.Config) repository.OnchainData {
	return onchain.NewClient(cfg.Onchain.BaseURL, cfg.Onchain.APIKey, cfg.Onchain.Timeout, cfg.Onchain.RateLimitRPS)
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	market repository.MarketData,
	onchainData repository.OnchainData,
	store *internalrepo.CHResultStore,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	var resultStore repository.ResultStore
	if store != nil {
		resultStore = store
	}
	return usecase.NewAnalyzer(market, onchainData, resultStore, pub, m, l, usecase.Config{
		Thresholds: indicators.Thresholds{Low: cfg.Analyzer.BiasLow, Caution: cfg.Analyzer.BiasCaution},
		MaxWorkers: cfg.Analyzer.MaxWorkers,
		Timeframe:  repository.NormalizeTimeframe(cfg.Analyzer.Timeframe),
		KlineLimit: cfg.Analyzer.KlineLimit,
		Exchange:   cfg.Exchange.Name,
	})
}

// ProvideCache selects the response cache backend.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHandler creates the HTTP handler with its collaborators.
func ProvideHandler(
	l *applogger.Logger,
	analyzer *usecase.Analyzer,
	c icache.BytesCache,
	store *internalrepo.CHResultStore,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewAnalysisHandler(l, analyzer, cfg.Analyzer.Watchlist)
	h.SetCache(c, cfg.Cache.TTL)
	if store != nil {
		h.SetHistory(store)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	stream *marketdata.Stream,
	chClient *pkgch.Client,
	pub repository.ResultPublisher,
) *server.App {
	return server.New(cfg, l, handler, stream, chClient, pub)
}
