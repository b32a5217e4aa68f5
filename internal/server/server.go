// Package server exposes read-only client operations over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go-rettiwt"
)

// Handler serves lookups through a client.
type Handler struct {
	client *rettiwt.Client
	log    *slog.Logger
}

// SetupRouter configures the gin router with all routes.
func SetupRouter(client *rettiwt.Client, log *slog.Logger, mode string) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{client: client, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.requestLogger())

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/tweets/:id", h.TweetDetails)
		v1.GET("/users/:id", h.UserDetails)
		v1.GET("/users/:id/timeline", h.UserTimeline)
		v1.GET("/search", h.Search)
	}
	return r
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": h.client.Authenticated(),
	})
}

// TweetDetails handles GET /api/v1/tweets/:id.
func (h *Handler) TweetDetails(c *gin.Context) {
	t, err := h.client.Tweet.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tweet not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UserDetails handles GET /api/v1/users/:id. id is a numeric id or a username.
func (h *Handler) UserDetails(c *gin.Context) {
	u, err := h.client.User.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UserTimeline handles GET /api/v1/users/:id/timeline?count=&cursor=.
func (h *Handler) UserTimeline(c *gin.Context) {
	count, _ := strconv.Atoi(c.Query("count"))
	page, err := h.client.User.Timeline(c.Request.Context(), c.Param("id"), count, c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pageBody(page))
}

// Search handles GET /api/v1/search?q=&from=&lang=&top=&count=&cursor=.
func (h *Handler) Search(c *gin.Context) {
	f := rettiwt.TweetFilter{
		IncludeWords: strings.Fields(c.Query("q")),
		Language:     c.Query("lang"),
		Top:          c.Query("top") == "true",
		Replies:      c.Query("replies") == "true",
	}
	if from := c.Query("from"); from != "" {
		f.FromUsers = strings.Split(from, ",")
	}
	if len(f.IncludeWords) == 0 && len(f.FromUsers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q or from is required"})
		return
	}
	count, _ := strconv.Atoi(c.Query("count"))

	page, err := h.client.Tweet.Search(c.Request.Context(), f, count, c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pageBody(page))
}

func pageBody(page *rettiwt.CursoredData[*rettiwt.Tweet]) gin.H {
	body := gin.H{"tweets": page.List}
	if page.HasMore() {
		body["next"] = page.Next.Value
	}
	return body
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rettiwt.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, rettiwt.ErrAuthenticationRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, rettiwt.ErrTransport), errors.Is(err, rettiwt.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	h.log.Warn("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
