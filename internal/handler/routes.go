package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted on the engine.
type Routes struct {
	Desks        *DeskHandler
	Participants *ParticipantHandler
	Colleges     *CollegeHandler
	Metrics      *MetricsHandler
	DeskAuth     gin.HandlerFunc
}

// Register mounts health, metrics and the desk API under prefix.
func (rt Routes) Register(r *gin.Engine, prefix string) {
	if rt.Metrics != nil {
		r.GET("/health", rt.Metrics.Health)
		r.GET("/metrics", rt.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	api.POST("/desks", rt.Desks.Login)

	secured := api.Group("")
	secured.Use(rt.DeskAuth)
	secured.GET("/desks/current", rt.Desks.Current)
	secured.DELETE("/desks/current", rt.Desks.Logout)

	secured.POST("/participants", rt.Participants.Create)
	secured.GET("/participants/:code", rt.Participants.Get)
	secured.PUT("/participants/:code", rt.Participants.Update)
	secured.POST("/participants/:code/verify", rt.Participants.Verify)
	secured.PUT("/participants/:code/hospitality", rt.Participants.Hospitality)

	secured.GET("/colleges", rt.Colleges.List)
	secured.POST("/colleges", rt.Colleges.Create)
}
