package main

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
)

func (s *GymServer) SetupRoute() {
	s.route.Use(sentrygin.New(sentrygin.Options{
		Repanic: true,
	}))

	s.route.Use(RequestLogger)

	s.route.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "API-TOKEN"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	s.route.Static("/images", s.catalog.UploadDir())

	s.route.GET("/api/health", s.Health)

	s.route.GET("/api/exercises", s.ListMachines)
	s.route.GET("/api/exercises/:id", s.GetMachine)
	s.route.GET("/api/grip-types", s.ListGripTypes)
	s.route.GET("/api/grip-types/:machineId", s.GripTypesForMachine)
	s.route.GET("/api/metadata", s.GetMetadata)
	s.route.GET("/api/all-files", s.AllFiles)
	s.route.GET("/api/machine-grip-relations", s.ListGripRelations)

	weights := s.route.Group("/api/weight-records", s.AuthenticateUser)
	weights.GET("", s.ListWeightRecords)
	weights.POST("", s.CreateWeightRecord)
	weights.GET("/max/:exerciseName", s.MaxWeightRecord)
	weights.DELETE("/:recordId", s.DeleteWeightRecord)

	admin := s.route.Group("", TokenAuthenticate("API-TOKEN", s.apiToken))
	admin.POST("/api/exercises/upload", s.UploadExercise)
	admin.PUT("/api/exercises/edit", s.EditExercise)
	admin.DELETE("/api/exercises/:filename", s.DeleteExercise)
	admin.POST("/api/machine-grip-relations", s.SaveGripRelations)

	admin.GET("/panel/machines", s.PanelMachines)
	admin.GET("/panel/machines/:id", s.PanelMachine)
	admin.PUT("/panel/machines/:id", s.PanelUpdateMachine)
	admin.DELETE("/panel/machines/:id", s.PanelDeleteMachine)
	admin.POST("/panel/machines/:id/muscle-groups", s.PanelAssociateMuscleGroup)
	admin.DELETE("/panel/machines/:id/muscle-groups/:groupId", s.PanelDissociateMuscleGroup)

	admin.GET("/panel/muscle-groups", s.PanelMuscleGroups)
	admin.POST("/panel/muscle-groups", s.PanelCreateMuscleGroup)
	admin.PUT("/panel/muscle-groups/:id", s.PanelUpdateMuscleGroup)
	admin.DELETE("/panel/muscle-groups/:id", s.PanelDeleteMuscleGroup)
}
