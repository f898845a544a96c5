// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package live_recorder_api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	internal_audio "github.com/rapidaai/meetcap/api/recorder-api/internal/audio"
	internal_ingest "github.com/rapidaai/meetcap/api/recorder-api/internal/ingest"
	internal_placement "github.com/rapidaai/meetcap/api/recorder-api/internal/placement"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
)

type LiveRecorderApi struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	handler   *internal_ingest.Handler
	placement *internal_placement.Placement
	upgrader  websocket.Upgrader
}

func New(
	cfg *config.AppConfig,
	logger commons.Logger,
	handler *internal_ingest.Handler,
	placement *internal_placement.Placement,
) *LiveRecorderApi {
	return &LiveRecorderApi{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		placement: placement,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect streams PCM frames from the client into a new session.
//
// @Router /ws/live-recorder [get]
// @Param recordingId query string false "existing recording to bind"
// @Success 101 "Switching Protocols"
func (api *LiveRecorderApi) Connect(c *gin.Context) {
	conn, err := api.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		api.logger.Errorf("live recorder upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if limit := api.cfg.LiveRecorderConfig.ReadLimit; limit > 0 {
		conn.SetReadLimit(limit)
	}
	ctx := c.Request.Context()
	ch := newWebsocketChannel(conn, api.cfg.LiveRecorderConfig.WriteWait)
	session := api.handler.Open(ch, c.Query("recordingId"))

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				api.logger.Warnw("live recorder connection dropped", "sessionId", session.ID(), "error", err.Error())
			}
			break
		}
		switch messageType {
		case websocket.TextMessage:
			api.handler.HandleMessage(ctx, session, true, payload)
		case websocket.BinaryMessage:
			api.handler.HandleMessage(ctx, session, false, payload)
		}
	}
	api.handler.HandleClose(ctx, session)
}

// Download serves a stored recording decoded back to plain WAV.
//
// @Router /v1/recordings/:recordingId/download [get]
// @Produce audio/wav
// @Failure 404 {object} gin.H
// @Failure 500 {object} gin.H
func (api *LiveRecorderApi) Download(c *gin.Context) {
	recordingId := c.Param("recordingId")
	data, err := api.placement.Read(c.Request.Context(), recordingId, internal_audio.FormatWAV)
	if errors.Is(err, internal_placement.ErrRecordingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recording not found"})
		return
	}
	if err != nil {
		api.logger.Errorf("unable to read recording %s: %v", recordingId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read recording"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, recordingId, internal_audio.FormatWAV))
	c.Data(http.StatusOK, "audio/wav", data)
}
