package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gymserver "github.com/pandarack/gym-server"
	"github.com/pandarack/gym-server/traceutils"
)

// PanelMachines lists every machine joined with its muscle groups.
func (s *GymServer) PanelMachines(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelMachines")

	views, err := s.catalog.MachineViews(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list machines", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
		"count":   len(views),
	})
}

func (s *GymServer) PanelMachine(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelMachine")

	view, err := s.catalog.MachineView(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "machine not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to read machine", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// PanelUpdateMachine renames a machine and optionally re-kinds its record,
// turning a misclassified image back into a grip type. The file and its
// external id are untouched.
func (s *GymServer) PanelUpdateMachine(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelUpdateMachine")

	var input struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}
	if input.Name == "" {
		abortWithError(c, http.StatusBadRequest, "name is required", gymserver.ErrInvalid)
		return
	}
	if input.Type != "" && input.Type != gymserver.KindMachine && input.Type != gymserver.KindGrip {
		abortWithError(c, http.StatusBadRequest, "invalid type", gymserver.ErrInvalid)
		return
	}

	view, err := s.catalog.MachineView(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "machine not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to read machine", err)
		return
	}

	record, err := s.catalog.Edit(view.Filename, input.Name, "", "")
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to update machine", err)
		return
	}

	if input.Type != "" && input.Type != record.Type {
		record.Type = input.Type
		if err := s.metadataStore.Upsert(view.Filename, record); err != nil {
			abortWithError(c, http.StatusInternalServerError, "fail to update machine", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":   view.ID,
			"name": record.Name,
			"type": record.Type,
		},
	})
}

// PanelDeleteMachine removes a machine's image, record and association rows.
func (s *GymServer) PanelDeleteMachine(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelDeleteMachine")

	view, err := s.catalog.MachineView(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "machine not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to read machine", err)
		return
	}

	if err := s.catalog.Delete(c, view.Filename); err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to delete machine", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "machine deleted",
	})
}

func (s *GymServer) PanelMuscleGroups(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelMuscleGroups")

	groups, err := s.relationStore.ListMuscleGroups(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list muscle groups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    groups,
		"count":   len(groups),
	})
}

func (s *GymServer) PanelCreateMuscleGroup(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelCreateMuscleGroup")

	var input struct {
		Name        string `json:"name" binding:"required"`
		DisplayName string `json:"display_name" binding:"required"`
		Color       string `json:"color"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	group, err := s.relationStore.CreateMuscleGroup(c, input.Name, input.DisplayName, input.Color)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to create muscle group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    group,
	})
}

func (s *GymServer) PanelUpdateMuscleGroup(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelUpdateMuscleGroup")

	var input struct {
		Name        string `json:"name" binding:"required"`
		DisplayName string `json:"display_name" binding:"required"`
		Color       string `json:"color"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	err := s.relationStore.UpdateMuscleGroup(c, c.Param("id"), input.Name, input.DisplayName, input.Color)
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "muscle group not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to update muscle group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "muscle group updated",
	})
}

func (s *GymServer) PanelDeleteMuscleGroup(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelDeleteMuscleGroup")

	err := s.relationStore.DeleteMuscleGroup(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "muscle group not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to delete muscle group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "muscle group deleted",
	})
}

// PanelAssociateMuscleGroup links a machine to a muscle group. Re-associating
// an existing pair only updates the primary flag.
func (s *GymServer) PanelAssociateMuscleGroup(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelAssociateMuscleGroup")

	var input struct {
		MuscleGroupID string `json:"muscle_group_id" binding:"required"`
		IsPrimary     bool   `json:"is_primary"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	err := s.relationStore.AssociateMuscleGroup(c, c.Param("id"), input.MuscleGroupID, input.IsPrimary)
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "muscle group not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to associate muscle group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "muscle group associated",
	})
}

func (s *GymServer) PanelDissociateMuscleGroup(c *gin.Context) {
	traceutils.SetHandlerTag(c, "PanelDissociateMuscleGroup")

	err := s.relationStore.DissociateMuscleGroup(c, c.Param("id"), c.Param("groupId"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to dissociate muscle group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "muscle group dissociated",
	})
}
