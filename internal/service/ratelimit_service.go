package service

import (
	"sync"
	"time"

	"videocrawl/internal/model"
	"videocrawl/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService keeps a token bucket per client IP
type RateLimitService struct {
	cfg      *model.RateLimitConfig
	log      *zap.Logger
	visitors map[string]*visitor
	mu       sync.Mutex
	quitChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig, log *zap.Logger) *RateLimitService {
	service := &RateLimitService{
		cfg:      cfg,
		log:      logger.OrNop(log),
		visitors: make(map[string]*visitor),
		quitChan: make(chan struct{}),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go service.cleanupRoutine()
	}

	return service
}

func (rls *RateLimitService) limiter(ip string) *rate.Limiter {
	v, exists := rls.visitors[ip]
	if !exists {
		perSecond := rate.Limit(float64(rls.cfg.RequestsPerMinute) / 60)
		burst := rls.cfg.BurstSize
		if burst <= 0 {
			burst = 1
		}
		v = &visitor{limiter: rate.NewLimiter(perSecond, burst)}
		rls.visitors[ip] = v
		rls.log.Debug("New rate limit entry created", zap.String("ip", ip))
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// IsAllowed checks if an IP is allowed to make a request
func (rls *RateLimitService) IsAllowed(ip string) bool {
	if !rls.cfg.Enabled {
		return true
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	if !rls.limiter(ip).Allow() {
		rls.log.Warn("Rate limit exceeded", zap.String("ip", ip), zap.Int("limit_per_minute", rls.cfg.RequestsPerMinute))
		return false
	}
	return true
}

// GetRemaining returns the whole tokens left for IP, -1 when limiting is off
func (rls *RateLimitService) GetRemaining(ip string) int {
	if !rls.cfg.Enabled {
		return -1
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	remaining := int(rls.limiter(ip).Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (rls *RateLimitService) cleanupRoutine() {
	interval := time.Duration(rls.cfg.CleanupInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rls.quitChan:
			rls.log.Info("Rate limit service stopped")
			return
		case <-ticker.C:
			rls.cleanup(interval)
		}
	}
}

// cleanup drops visitors idle for longer than maxIdle
func (rls *RateLimitService) cleanup(maxIdle time.Duration) {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	removed := 0
	for ip, v := range rls.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(rls.visitors, ip)
			removed++
		}
	}

	if removed > 0 {
		rls.log.Debug("Rate limit entries cleaned up", zap.Int("removed", removed), zap.Int("remaining", len(rls.visitors)))
	}
}

// Stop stops the rate limit service
func (rls *RateLimitService) Stop() {
	rls.stopOnce.Do(func() { close(rls.quitChan) })
}
