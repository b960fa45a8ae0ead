//go:build !solution

package rwserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/slon/rwsem/rwcoord"
	"gitlab.com/slon/rwsem/semaphore"
)

// DefaultInflight is the number of coordinator calls served at once by default.
const DefaultInflight = 64

// Handler exposes a coordinator over HTTP.
type Handler struct {
	coord    *rwcoord.Coordinator
	inflight *semaphore.Semaphore
	logger   *zap.Logger
}

// NewHandler returns router serving coord.
//
// At most inflight Read/Write calls run at once; a request that gives up
// while waiting for admission gets 503. gatherer may be nil, then /metrics
// is not registered.
func NewHandler(coord *rwcoord.Coordinator, inflight int, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inflight < 1 {
		inflight = DefaultInflight
	}
	h := &Handler{
		coord:    coord,
		inflight: semaphore.New(inflight),
		logger:   logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// Recovery middleware должен быть первым
	router.Use(recoveryMiddleware(logger))
	router.Use(zapMiddleware(logger))

	router.GET("/count", h.count)
	router.GET("/readers", h.readers)
	router.POST("/read/:id", h.admit, h.read)
	router.POST("/write/:id", h.admit, h.write)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// NewServer wraps NewHandler into *http.Server listening on addr.
func NewServer(addr string, coord *rwcoord.Coordinator, inflight int, gatherer prometheus.Gatherer, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewHandler(coord, inflight, gatherer, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// admit держит слот inflight на время обработки запроса
func (h *Handler) admit(c *gin.Context) {
	if err := semaphore.AcquireContext(c.Request.Context(), h.inflight); err != nil {
		getLogger(c, h.logger).Warn("request abandoned before admission", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "server busy"})
		return
	}
	defer h.inflight.Release()
	c.Next()
}

func (h *Handler) count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.coord.SnapshotCount()})
}

func (h *Handler) readers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_readers": h.coord.ActiveReaderCount(),
		"max_readers":    h.coord.MaxReaders(),
	})
}

func (h *Handler) read(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reader_id": id,
		"count":     h.coord.Read(id),
	})
}

func (h *Handler) write(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.coord.Write(id)
	c.JSON(http.StatusOK, gin.H{
		"writer_id": res.WriterID,
		"count":     res.Count,
		"overflow":  res.Overflow,
	})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
