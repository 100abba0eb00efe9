package api

import (
	"encoding/json"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	ichrepo "CoinSight/internal/repository"
	icache "CoinSight/internal/service/cache"
	"CoinSight/internal/service/ratelimit"
	"CoinSight/internal/usecase"
	xhttp "CoinSight/pkg/http"
	xlogger "CoinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	defaultCacheTTL = 60 * time.Second
	historyLimitMax = 500
)

// AnalysisHandler exposes the analysis pipeline over HTTP.
type AnalysisHandler struct {
	logger    *xlogger.Logger
	analyzer  *usecase.Analyzer
	cache     icache.BytesCache
	cacheTTL  time.Duration
	rl        *ratelimit.Limiter
	history   *ichrepo.CHResultStore // optional
	watchlist []string
}

func NewAnalysisHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, watchlist []string) *AnalysisHandler {
	return &AnalysisHandler{
		logger:    logger,
		analyzer:  analyzer,
		rl:        ratelimit.New(),
		watchlist: watchlist,
	}
}

// SetCache injects a response cache with its entry TTL.
func (h *AnalysisHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	h.cache = c
	h.cacheTTL = ttl
}

// SetHistory injects the stored-results reader.
func (h *AnalysisHandler) SetHistory(s *ichrepo.CHResultStore) { h.history = s }

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/batch", h.Batch)
	g.GET("/summary", h.Summary)
	g.GET("/watchlist", h.Watchlist)
	g.GET("/results", h.Results)
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analyze", 10, 5) {
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	tf := drepo.NormalizeTimeframe(req.Timeframe)
	cacheKey := "analyze:" + req.Identifier + ":" + string(tf)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("analyze cache get failed", xlogger.Error(err))
		} else if ok {
			var cached models.AnalysisResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	result, err := h.analyzer.AnalyzeTimeframe(c.Request().Context(), req.Identifier, tf)
	if err != nil {
		h.logger.Warn("analyze failed",
			xlogger.String("identifier", req.Identifier),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("analyze %s: %v", req.Identifier, err))
	}

	if h.cache != nil {
		if b, err := json.Marshal(result); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, h.cacheTTL); err != nil {
				h.logger.Warn("analyze cache set failed", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, result)
}

type batchResponse struct {
	Results []*models.AnalysisResult `json:"results"`
	Summary *models.SummaryStats     `json:"summary"`
}

func (h *AnalysisHandler) Batch(c echo.Context) error {
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":batch", 3, 1) {
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	tf := drepo.NormalizeTimeframe(req.Timeframe)
	results := h.analyzer.AnalyzeBatchTimeframe(c.Request().Context(), req.Identifiers, tf)
	return xhttp.SuccessResponse(c, &batchResponse{
		Results: results,
		Summary: usecase.Summarize(results),
	})
}

// Summary analyzes the configured watchlist and returns aggregate stats only.
func (h *AnalysisHandler) Summary(c echo.Context) error {
	if len(h.watchlist) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("watchlist is empty"))
	}
	if !h.rl.Allow(c.RealIP()+":summary", 3, 1) {
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	results := h.analyzer.AnalyzeBatch(c.Request().Context(), h.watchlist)
	stats := usecase.Summarize(results)
	if stats == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("no watchlist symbol could be analyzed"))
	}
	return xhttp.SuccessResponse(c, stats)
}

func (h *AnalysisHandler) Watchlist(c echo.Context) error {
	return xhttp.ListResponse(c, h.watchlist, int64(len(h.watchlist)))
}

type resultsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

// Results serves recently persisted analyses from ClickHouse.
func (h *AnalysisHandler) Results(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("result history is not enabled"))
	}

	req := &resultsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Limit > historyLimitMax {
		req.Limit = historyLimitMax
	}

	rows, err := h.history.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("results query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("result history unavailable"))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
