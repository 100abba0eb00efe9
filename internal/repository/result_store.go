package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	pkgch "CoinSight/pkg/clickhouse"
)

const resultsTable = "analysis_results"

// Schema statements for the analysis results table, applied at startup.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + resultsTable + ` (
		ts               DateTime64(3),
		symbol           String,
		name             String,
		source           LowCardinality(String),
		exchange         LowCardinality(String),
		chain            LowCardinality(String),
		address          String,
		price            Float64,
		price_change_24h Float64,
		volume_24h       Float64,
		trend            LowCardinality(String),
		bias_level       LowCardinality(String),
		bias7            Nullable(Float64),
		signal           LowCardinality(String),
		strength         UInt8,
		reasons          String,
		warnings         String
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (symbol, ts)`,
}

// CHResultStore persists analysis results in ClickHouse.
type CHResultStore struct {
	db *sql.DB
}

func NewCHResultStore(ch *pkgch.Client) *CHResultStore {
	return &CHResultStore{db: ch.DB()}
}

func (s *CHResultStore) Store(ctx context.Context, r *models.AnalysisResult) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(ts, symbol, name, source, exchange, chain, address, price, price_change_24h,
		 volume_24h, trend, bias_level, bias7, signal, strength, reasons, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, resultsTable)
	args, err := insertArgs(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store result %s: %w", r.Symbol, err)
	}
	return nil
}

func (s *CHResultStore) StoreBatch(ctx context.Context, rs []*models.AnalysisResult) error {
	if len(rs) == 0 {
		return nil
	}

	values := make([]string, 0, len(rs))
	args := make([]interface{}, 0, len(rs)*17)
	for _, r := range rs {
		if r == nil {
			continue
		}
		rowArgs, err := insertArgs(r)
		if err != nil {
			return err
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, rowArgs...)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(ts, symbol, name, source, exchange, chain, address, price, price_change_24h,
		 volume_24h, trend, bias_level, bias7, signal, strength, reasons, warnings)
		VALUES %s`, resultsTable, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store result batch: %w", err)
	}
	return nil
}

func insertArgs(r *models.AnalysisResult) ([]interface{}, error) {
	reasons, err := json.Marshal(r.SignalReasons)
	if err != nil {
		return nil, fmt.Errorf("marshal reasons: %w", err)
	}
	warnings, err := json.Marshal(r.RiskWarnings)
	if err != nil {
		return nil, fmt.Errorf("marshal warnings: %w", err)
	}

	var bias7 interface{}
	if r.Technical.Bias7 != nil {
		bias7 = *r.Technical.Bias7
	}

	return []interface{}{
		r.AnalysisTime,
		r.Symbol,
		r.Name,
		r.Source,
		r.Exchange,
		r.Chain,
		r.Address,
		r.CurrentPrice,
		r.PriceChange24h,
		r.Volume24h,
		string(r.Technical.TrendStatus),
		string(r.Technical.BiasLevel),
		bias7,
		string(r.Signal),
		uint8(r.SignalStrength),
		string(reasons),
		string(warnings),
	}, nil
}

// StoredResult is the compact row shape served from history queries.
type StoredResult struct {
	Timestamp      time.Time         `json:"timestamp"`
	Symbol         string            `json:"symbol"`
	Source         string            `json:"source"`
	Price          float64           `json:"price"`
	PriceChange24h float64           `json:"price_change_24h"`
	Signal         models.SignalType `json:"signal"`
	Strength       int               `json:"strength"`
}

// Recent returns the latest stored results, newest first.
func (s *CHResultStore) Recent(ctx context.Context, limit int) ([]StoredResult, error) {
	q := fmt.Sprintf(`SELECT ts, symbol, source, price, price_change_24h, signal, strength
		FROM %s ORDER BY ts DESC LIMIT ?`, resultsTable)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	defer rows.Close()

	out := make([]StoredResult, 0, limit)
	for rows.Next() {
		var sr StoredResult
		var strength uint8
		if err := rows.Scan(&sr.Timestamp, &sr.Symbol, &sr.Source, &sr.Price,
			&sr.PriceChange24h, &sr.Signal, &strength); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		sr.Strength = int(strength)
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (s *CHResultStore) Close() error {
	return nil
}
