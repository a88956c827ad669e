// Package server exposes crawls over HTTP. At most one crawl runs at a time.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go-jss-crawler/internal/app"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"

	"github.com/gin-gonic/gin"
)

// Runner performs one crawl.
type Runner func(ctx context.Context, req scraper.Request) (app.Result, error)

type crawlRequest struct {
	Date      string   `json:"date"`
	Companies []string `json:"companies"`
	Mode      string   `json:"mode"`
}

type lastRun struct {
	Request  scraper.Request `json:"request"`
	Result   app.Result      `json:"result"`
	Error    string          `json:"error,omitempty"`
	Finished time.Time       `json:"finished"`
}

type Handler struct {
	ctx   context.Context
	run   Runner
	today func() string
	log   logger.Logger

	mu      sync.Mutex
	running *scraper.Request
	last    *lastRun
	wg      sync.WaitGroup
}

// NewHandler runs crawls under ctx, so cancelling it aborts them. today
// supplies the date of requests that omit one.
func NewHandler(ctx context.Context, run Runner, today func() string, log logger.Logger) *Handler {
	return &Handler{ctx: ctx, run: run, today: today, log: log}
}

func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", h.health)
	r.GET("/crawl", h.status)
	r.POST("/crawl", h.crawl)
	return r
}

// Wait blocks until the running crawl, if any, has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "jasoseol crawler API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) status(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"running": h.running,
		"last":    h.last,
	})
}

func (h *Handler) crawl(c *gin.Context) {
	var body crawlRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.toRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	if h.running != nil {
		busy := *h.running
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a crawl is already running", "running": busy})
		return
	}
	h.running = &req
	h.wg.Add(1)
	h.mu.Unlock()

	go h.execute(req)
	c.JSON(http.StatusAccepted, gin.H{"status": "started", "request": req})
}

func (h *Handler) toRequest(body crawlRequest) (scraper.Request, error) {
	mode, err := scraper.ParseMode(body.Mode)
	if err != nil {
		return scraper.Request{}, err
	}
	date := body.Date
	if date == "" {
		date = h.today()
	}
	if _, err := filter.ParseDay(date); err != nil {
		return scraper.Request{}, err
	}
	return scraper.Request{Date: date, Companies: body.Companies, Mode: mode}, nil
}

func (h *Handler) execute(req scraper.Request) {
	defer h.wg.Done()

	h.log.Info("🚀 Crawl requested over HTTP", logger.String("date", req.Date))
	res, err := h.run(h.ctx, req)

	last := &lastRun{Request: req, Result: res, Finished: time.Now()}
	if err != nil {
		last.Error = err.Error()
	}

	h.mu.Lock()
	h.running = nil
	h.last = last
	h.mu.Unlock()
}
