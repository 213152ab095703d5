package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gymserver "github.com/pandarack/gym-server"
	"github.com/pandarack/gym-server/traceutils"
)

// ListWeightRecords returns the requesting user's records, newest first.
func (s *GymServer) ListWeightRecords(c *gin.Context) {
	traceutils.SetHandlerTag(c, "ListWeightRecords")

	records, err := s.relationStore.ListWeightRecords(c, c.GetString("userID"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list weight records", err)
		return
	}
	if records == nil {
		records = []gymserver.WeightRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"records": records,
		"count":   len(records),
	})
}

// CreateWeightRecord logs a lift for the requesting user.
func (s *GymServer) CreateWeightRecord(c *gin.Context) {
	traceutils.SetHandlerTag(c, "CreateWeightRecord")

	var input struct {
		ExerciseName string  `json:"exercise_name" binding:"required"`
		MachineID    string  `json:"machine_id"`
		GripType     string  `json:"grip_type"`
		Weight       float64 `json:"weight"`
		Reps         int     `json:"reps"`
		Notes        string  `json:"notes"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}
	if input.Weight <= 0 || input.Reps <= 0 {
		abortWithError(c, http.StatusBadRequest, "weight and reps must be positive", gymserver.ErrInvalid)
		return
	}

	record := gymserver.WeightRecord{
		UserID:       c.GetString("userID"),
		ExerciseName: input.ExerciseName,
		MachineID:    input.MachineID,
		GripType:     input.GripType,
		Weight:       input.Weight,
		Reps:         input.Reps,
		Notes:        input.Notes,
	}

	if err := s.relationStore.CreateWeightRecord(c, &record); err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to create weight record", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"record":  record,
	})
}

// MaxWeightRecord returns the user's heaviest lift for an exercise,
// optionally narrowed by the gripType query parameter. No matching record
// is a null payload, not an error.
func (s *GymServer) MaxWeightRecord(c *gin.Context) {
	traceutils.SetHandlerTag(c, "MaxWeightRecord")

	record, err := s.relationStore.MaxWeightRecord(c,
		c.GetString("userID"), c.Param("exerciseName"), c.Query("gripType"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to resolve max weight", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"maxRecord": record,
	})
}

// DeleteWeightRecord removes one of the requesting user's records. Records
// of other users are forbidden, not hidden.
func (s *GymServer) DeleteWeightRecord(c *gin.Context) {
	traceutils.SetHandlerTag(c, "DeleteWeightRecord")

	err := s.relationStore.DeleteWeightRecord(c, c.Param("recordId"), c.GetString("userID"))
	if err != nil {
		switch {
		case errors.Is(err, gymserver.ErrNotFound):
			abortWithError(c, http.StatusNotFound, "weight record not found", err)
		case errors.Is(err, gymserver.ErrForbidden):
			abortWithError(c, http.StatusForbidden, "weight record belongs to another user", err)
		default:
			abortWithError(c, http.StatusInternalServerError, "fail to delete weight record", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "weight record deleted",
	})
}
