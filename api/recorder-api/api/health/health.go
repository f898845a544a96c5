// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
)

type HealthCheckApi struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	connectors []connectors.Connector
}

// New builds the health endpoints. Readiness fails when any of the given
// connectors is unreachable.
func New(cfg *config.AppConfig, logger commons.Logger, postgres connectors.PostgresConnector, others ...connectors.Connector) *HealthCheckApi {
	return &HealthCheckApi{
		cfg:        cfg,
		logger:     logger,
		connectors: append([]connectors.Connector{postgres}, others...),
	}
}

func (h *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true, "service": h.cfg.Name, "version": h.cfg.Version})
}

func (h *HealthCheckApi) Readiness(c *gin.Context) {
	status := gin.H{}
	ready := true
	for _, conn := range h.connectors {
		ok := conn.IsConnected(c.Request.Context())
		status[conn.Name()] = ok
		if !ok {
			h.logger.Warnf("readiness check failed for %s", conn.Name())
			ready = false
		}
	}
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "connectors": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, "connectors": status})
}
