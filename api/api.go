package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/cestabasica/analysis"
	"github.com/sartorproj/cestabasica/timeseries"
)

// Defaults are the parameters used when a request does not override them.
type Defaults struct {
	Forecast   analysis.ForecastParams
	LeadLag    analysis.LeadLagParams
	Categories []string
}

// Handler serves the analysis entry points as JSON.
type Handler struct {
	analyzer *analysis.Analyzer
	defaults Defaults
	log      *logrus.Entry
}

// NewHandler returns a Handler over an. Requests that do not override a
// parameter use defaults.
func NewHandler(an *analysis.Analyzer, defaults Defaults, log *logrus.Entry) *Handler {
	return &Handler{analyzer: an, defaults: defaults, log: log.WithField("component", "api")}
}

// NewRouter returns a gin engine with recovery, request logging and every
// route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))
	SetupRoutes(r, h)
	return r
}

// SetupRoutes registers the health probe and the /api/v1 routes on r.
func SetupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/categories", h.Categories)

		forecast := v1.Group("/forecast")
		{
			forecast.GET("/category/:category", h.CategoryForecast)
			forecast.GET("/product/:product", h.ProductForecast)
			forecast.POST("/batch", h.Batch)
		}

		v1.GET("/leadlag/:product", h.LeadLag)
	}
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Info("request")
	}
}

// Health reports the size and fingerprint of the loaded dataset.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"observations": h.analyzer.Dataset().Len(),
		"fingerprint":  h.analyzer.Dataset().Fingerprint(),
	})
}

// Categories lists the categories present in the dataset and the ones a
// batch forecasts by default.
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.analyzer.Dataset().Categories(),
		"default":    h.defaults.Categories,
	})
}

// CategoryForecast forecasts the category named in the path.
func (h *Handler) CategoryForecast(c *gin.Context) {
	p, ok := h.forecastParams(c)
	if !ok {
		return
	}
	report := h.analyzer.CategoryForecast(c.Request.Context(), c.Param("category"), p)
	c.JSON(status(report.Error), report)
}

// ProductForecast forecasts the product named in the path.
func (h *Handler) ProductForecast(c *gin.Context) {
	p, ok := h.forecastParams(c)
	if !ok {
		return
	}
	report := h.analyzer.ProductForecast(c.Request.Context(), c.Param("product"), p)
	c.JSON(status(report.Error), report)
}

// BatchRequest is the body of POST /api/v1/forecast/batch. Empty fields
// take the server defaults.
type BatchRequest struct {
	Categories []string `json:"categories"`
	Frequency  string   `json:"frequency"`
	NLags      *int     `json:"n_lags"`
	TestWindow *int     `json:"test_window"`
	Horizon    *int     `json:"horizon"`
}

// Batch forecasts several categories and returns the batch report. A
// failed category does not fail the request.
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body: "+err.Error())
			return
		}
	}

	p := h.defaults.Forecast
	if req.Frequency != "" {
		freq, err := timeseries.ParseFrequency(req.Frequency)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		p.Frequency = freq
	}
	for _, o := range []struct {
		src *int
		dst *int
	}{{req.NLags, &p.NLags}, {req.TestWindow, &p.TestWindow}, {req.Horizon, &p.Horizon}} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = h.defaults.Categories
	}

	c.JSON(http.StatusOK, h.analyzer.ForecastCategories(c.Request.Context(), categories, p))
}

// LeadLag compares establishments a and b for the product named in the
// path.
func (h *Handler) LeadLag(c *gin.Context) {
	a, b := c.Query("a"), c.Query("b")
	if a == "" || b == "" {
		badRequest(c, "query parameters a and b name the two establishments")
		return
	}

	p := h.defaults.LeadLag
	q := query{c: c}
	p.Frequency = q.freqParam("freq", p.Frequency)
	p.MaxLag = q.intParam("max_lag", p.MaxLag)
	p.MaxDiffPasses = q.intParam("max_diff_passes", p.MaxDiffPasses)
	p.Alpha = q.floatParam("alpha", p.Alpha)
	if q.err != "" {
		badRequest(c, q.err)
		return
	}

	report := h.analyzer.LeadLag(c.Request.Context(), c.Param("product"), a, b, p)
	c.JSON(status(report.Error), report)
}

func (h *Handler) forecastParams(c *gin.Context) (analysis.ForecastParams, bool) {
	p := h.defaults.Forecast
	q := query{c: c}
	p.Frequency = q.freqParam("freq", p.Frequency)
	p.NLags = q.intParam("n_lags", p.NLags)
	p.TestWindow = q.intParam("test_window", p.TestWindow)
	p.Horizon = q.intParam("horizon", p.Horizon)
	if q.err != "" {
		badRequest(c, q.err)
		return p, false
	}
	return p, true
}

// status maps a report error to its HTTP status.
func status(e *analysis.ErrorInfo) int {
	switch {
	case e == nil:
		return http.StatusOK
	case e.Kind == analysis.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": analysis.ErrorInfo{Kind: analysis.InvalidParameter, Message: msg},
	})
}

// query reads optional query parameters, keeping the first parse error.
type query struct {
	c   *gin.Context
	err string
}

func (q *query) intParam(name string, def int) int {
	raw, ok := q.c.GetQuery(name)
	if !ok || q.err != "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.err = name + " must be an integer"
		return def
	}
	return v
}

func (q *query) floatParam(name string, def float64) float64 {
	raw, ok := q.c.GetQuery(name)
	if !ok || q.err != "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.err = name + " must be a number"
		return def
	}
	return v
}

func (q *query) freqParam(name string, def timeseries.Frequency) timeseries.Frequency {
	raw, ok := q.c.GetQuery(name)
	if !ok || q.err != "" {
		return def
	}
	f, err := timeseries.ParseFrequency(raw)
	if err != nil {
		q.err = err.Error()
		return def
	}
	return f
}
