package recorder_routers

import (
	"github.com/gin-gonic/gin"
	liveRecorderApi "github.com/rapidaai/meetcap/api/recorder-api/api/live"
	internal_ingest "github.com/rapidaai/meetcap/api/recorder-api/internal/ingest"
	internal_placement "github.com/rapidaai/meetcap/api/recorder-api/internal/placement"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
)

func LiveRecorderRoutes(
	cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger,
	handler *internal_ingest.Handler,
	placement *internal_placement.Placement) {
	logger.Info("LiveRecorderRoutes added to engine.")
	liveApi := liveRecorderApi.New(cfg, logger, handler, placement)
	engine.GET("/ws/live-recorder", liveApi.Connect)

	apiv1 := engine.Group("v1/recordings")
	{
		apiv1.GET("/:recordingId/download", liveApi.Download)
	}
}
