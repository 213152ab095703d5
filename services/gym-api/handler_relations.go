package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	gymserver "github.com/pandarack/gym-server"
	"github.com/pandarack/gym-server/traceutils"
)

// ListGripRelations dumps the machine/grip-type junction table.
func (s *GymServer) ListGripRelations(c *gin.Context) {
	traceutils.SetHandlerTag(c, "ListGripRelations")

	relations, err := s.relationStore.AllGripRelations(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list grip relations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    relations,
		"count":   len(relations),
	})
}

// SaveGripRelations stores a batch of machine/grip-type pairs. The default
// replaces the whole association set; append mode layers the batch on top.
func (s *GymServer) SaveGripRelations(c *gin.Context) {
	traceutils.SetHandlerTag(c, "SaveGripRelations")

	var input struct {
		Relations []gymserver.GripRelation `json:"relations"`
		Append    bool                     `json:"append"`
	}
	if err := c.Bind(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	for _, relation := range input.Relations {
		if relation.MachineID == "" || relation.GripTypeID == "" {
			abortWithError(c, http.StatusBadRequest,
				"every relation needs machine_id and grip_type_id", gymserver.ErrInvalid)
			return
		}
	}

	if err := s.relationStore.SaveGripRelations(c, input.Relations, input.Append); err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to save grip relations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d relations processed", len(input.Relations)),
	})
}
