// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hostorigin/internal/dnsclient"
	"hostorigin/internal/hosting"
	"hostorigin/internal/metrics"
	"hostorigin/internal/middleware"

	"github.com/gin-gonic/gin"
)

// HostingChecker is the slice of the hosting engine the handler needs.
type HostingChecker interface {
	Check(ctx context.Context, target string) *hosting.HostingCheckResult
}

type CheckHandler struct {
	Checker HostingChecker
	Limiter middleware.RateLimiter
	Metrics *metrics.Metrics

	// Timeout caps a single check end to end. Zero means the request
	// context alone bounds it.
	Timeout time.Duration
}

func NewCheckHandler(checker HostingChecker, limiter middleware.RateLimiter, m *metrics.Metrics) *CheckHandler {
	return &CheckHandler{Checker: checker, Limiter: limiter, Metrics: m}
}

type checkRequest struct {
	Target string `json:"target"`
}

// Check runs a hosting-origin check. POST carries the target in a JSON body,
// GET in the target query parameter. Malformed domains are not an HTTP
// error: the engine folds them into an unknown verdict with evidence, so
// only a missing target or an unreadable body gets a 4xx here.
func (h *CheckHandler) Check(c *gin.Context) {
	target := strings.TrimSpace(c.Query("target"))
	if c.Request.Method == http.MethodPost {
		var req checkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with a target field"})
			return
		}
		target = strings.TrimSpace(req.Target)
	}
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target domain is required"})
		return
	}

	// The limiter keys on the normalized hostname so respellings of the
	// same domain share one anti-repeat bucket.
	asciiDomain, err := dnsclient.NormalizeTarget(target)
	if err != nil {
		asciiDomain = strings.ToLower(target)
	}

	if h.Limiter != nil {
		rl := h.Limiter.CheckAndRecord(c.ClientIP(), asciiDomain)
		if !rl.Allowed {
			h.Metrics.IncrementRateLimited()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        "Too many requests. Please wait before trying again.",
				"reason":       rl.Reason,
				"wait_seconds": rl.WaitSeconds,
			})
			return
		}
	}

	ctx := c.Request.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	started := time.Now()
	result := h.Checker.Check(ctx, target)

	c.JSON(http.StatusOK, gin.H{
		"domain":       target,
		"ascii_domain": asciiDomain,
		"hosting":      result,
		"duration_ms":  time.Since(started).Milliseconds(),
	})
}
