// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hostorigin/internal/metrics"
	"hostorigin/internal/registry"

	"github.com/gin-gonic/gin"
)

type RegistryHandler struct {
	Registry *registry.Client
	Metrics  *metrics.Metrics
}

func NewRegistryHandler(client *registry.Client, m *metrics.Metrics) *RegistryHandler {
	return &RegistryHandler{Registry: client, Metrics: m}
}

type registryRequest struct {
	INN string `json:"inn"`
}

// CheckOperator looks an INN up in the Roskomnadzor operator registry. POST
// carries the INN in a JSON body, GET in the inn query parameter.
func (h *RegistryHandler) CheckOperator(c *gin.Context) {
	inn := strings.TrimSpace(c.Query("inn"))
	if c.Request.Method == http.MethodPost {
		var req registryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with an inn field"})
			return
		}
		inn = strings.TrimSpace(req.INN)
	}
	if inn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INN is required"})
		return
	}

	if err := registry.ValidateINN(inn); err != nil {
		h.Metrics.IncrementRegistryLookup("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.Registry.CheckOperator(c.Request.Context(), inn)
	if errors.Is(err, registry.ErrBotProtected) {
		h.Metrics.IncrementRegistryLookup("bot_protected")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "The registry is behind interactive verification. Try again later.",
		})
		return
	}
	if err != nil {
		h.Metrics.IncrementRegistryLookup("error")
		slog.Warn("registry lookup failed", "inn", inn, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Registry lookup failed. The service may be unavailable."})
		return
	}

	outcome := "not_found"
	if info.Found {
		outcome = "found"
	}
	h.Metrics.IncrementRegistryLookup(outcome)

	c.JSON(http.StatusOK, gin.H{
		"inn":      info.INN,
		"registry": info,
	})
}
