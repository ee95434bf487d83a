package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Mode is the gin mode: debug, release or test.
	Mode string
	// SummaryRatePerMinute limits summary generations; 0 disables it.
	SummaryRatePerMinute int
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter wires every route of the dashboard.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}

	r := gin.New()
	r.Use(RequestID(), Logger(l.With(zap.String("component", "access"))), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	limit := RateLimit(opts.SummaryRatePerMinute, l)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", h.Dashboard)
	r.POST("/upload", h.UploadPage)
	r.POST("/generate-summary/:dataset_id", limit, h.GenerateSummaryPage)

	api := r.Group("/api")
	{
		api.POST("/datasets", h.UploadDataset)
		api.GET("/datasets", h.ListDatasets)
		api.GET("/datasets/:id", h.GetDataset)
		api.DELETE("/datasets/:id", h.DeleteDataset)
		api.GET("/datasets/:id/records", h.GetRecords)
		api.GET("/datasets/:id/aggregates", h.GetAggregates)
		api.GET("/datasets/:id/export.xlsx", h.ExportWorkbook)
		api.POST("/datasets/:id/summary", limit, h.GenerateSummary)
		api.GET("/summary/status", h.SummaryStatus)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	return r
}
