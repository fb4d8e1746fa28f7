// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/handlers"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/observability"
)

// ServiceName is reported by the tracing middleware.
const ServiceName = "aleutian-ask"

// NewRouter builds a gin engine with recovery, tracing and request metrics,
// then registers every route.
func NewRouter(store *handlers.SessionStore, metrics *observability.SessionMetrics, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	if metrics != nil {
		router.Use(requestMetrics(metrics))
	}
	SetupRoutes(router, store, metricsHandler)
	return router
}

// SetupRoutes registers the presentation API. A nil metricsHandler serves the
// default Prometheus registry.
func SetupRoutes(router *gin.Engine, store *handlers.SessionStore, metricsHandler http.Handler) {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := router.Group("/v1")
	{
		v1.GET("/examples", handlers.ListExamples)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(store))
			sessions.GET("", handlers.ListSessions(store))
			sessions.GET("/:sessionId", handlers.GetSession(store))
			sessions.DELETE("/:sessionId", handlers.DeleteSession(store))
			sessions.GET("/:sessionId/stream", handlers.StreamSession(store))

			sessions.POST("/:sessionId/submit", handlers.Submit(store))
			sessions.POST("/:sessionId/retry", handlers.Retry(store))
			sessions.POST("/:sessionId/regenerate", handlers.Regenerate(store))
			sessions.POST("/:sessionId/followup", handlers.Followup(store))
			sessions.POST("/:sessionId/clear", handlers.Clear(store))

			sessions.POST("/:sessionId/toggle", handlers.Toggle(store))
			sessions.POST("/:sessionId/tab", handlers.ChangeTab(store))
			sessions.POST("/:sessionId/citation", handlers.SelectCitation(store))
			sessions.PATCH("/:sessionId/settings", handlers.UpdateSettings(store))
			sessions.POST("/:sessionId/panels/config", handlers.ToggleConfigPanel(store))
			sessions.POST("/:sessionId/panels/info", handlers.ToggleInfoPanel(store))
		}
	}
}

// requestMetrics counts requests by route template and status.
func requestMetrics(metrics *observability.SessionMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordAPIRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}
