package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"chatdb/internal/observe"
)

const requestIDHeader = "X-Request-ID"

// requestID 들어온 X-Request-ID 를 유지하고 없으면 새로 발급
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(observe.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLog 요청마다 한 줄
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("request_id", observe.RequestIDFromContext(c.Request.Context())),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http_request", attrs...)
	}
}

// metrics 경로 패턴 단위로 요청 수와 지연 기록
func metrics(m *observe.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// timeout 요청 컨텍스트에 마감 시간 설정
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ipLimiter 클라이언트 IP 별 토큰 버킷
// 오래 쓰지 않은 IP 의 버킷은 캐시 만료로 정리된다.
type ipLimiter struct {
	limit rate.Limit
	burst int
	cache *cache.Cache
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &ipLimiter{
		limit: rate.Limit(perSecond),
		burst: burst,
		cache: cache.New(15*time.Minute, 10*time.Minute),
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	if v, ok := l.cache.Get(ip); ok {
		l.cache.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.cache.Add(ip, lim, cache.DefaultExpiration); err != nil {
		// 다른 요청이 먼저 넣은 경우
		if v, ok := l.cache.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			fail(c, http.StatusTooManyRequests, "요청이 너무 많습니다")
			return
		}
		c.Next()
	}
}
