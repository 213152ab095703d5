package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gymserver "github.com/pandarack/gym-server"
	"github.com/pandarack/gym-server/log"
	"github.com/pandarack/gym-server/traceutils"
)

func (s *GymServer) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"time":    time.Now().UTC(),
	})
}

// ListMachines returns the machine catalog.
func (s *GymServer) ListMachines(c *gin.Context) {
	traceutils.SetHandlerTag(c, "ListMachines")

	machines, err := s.catalog.ListMachines()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list machines", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    machines,
		"count":   len(machines),
	})
}

func (s *GymServer) GetMachine(c *gin.Context) {
	traceutils.SetHandlerTag(c, "GetMachine")

	machine, err := s.catalog.Get(c.Param("id"))
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
		"data":    machine,
	})
}

// ListGripTypes returns every grip-type image regardless of machine.
func (s *GymServer) ListGripTypes(c *gin.Context) {
	traceutils.SetHandlerTag(c, "ListGripTypes")

	gripTypes, err := s.catalog.ListGripTypes()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list grip types", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gripTypes,
		"count":   len(gripTypes),
	})
}

// GripTypesForMachine resolves the grip types associated to one machine. A
// machine without associations gets an empty list, not an error.
func (s *GymServer) GripTypesForMachine(c *gin.Context) {
	traceutils.SetHandlerTag(c, "GripTypesForMachine")

	machineID := c.Param("machineId")

	gripTypes, err := s.catalog.GripTypesForMachine(c, machineID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to resolve grip types", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"machineId": machineID,
		"data":      gripTypes,
		"count":     len(gripTypes),
	})
}

// GetMetadata dumps the raw metadata sidecar, keyed by filename.
func (s *GymServer) GetMetadata(c *gin.Context) {
	traceutils.SetHandlerTag(c, "GetMetadata")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.metadataStore.All(),
	})
}

// AllFiles is the admin listing of every image on disk.
func (s *GymServer) AllFiles(c *gin.Context) {
	traceutils.SetHandlerTag(c, "AllFiles")

	entries, err := s.catalog.AllFiles()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to list files", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// UploadExercise stores a new catalog image and its metadata record. The
// payload is rejected before anything touches disk; a metadata write failure
// after the file landed is reported, not rolled back.
func (s *GymServer) UploadExercise(c *gin.Context) {
	traceutils.SetHandlerTag(c, "UploadExercise")

	kind := c.PostForm("type")
	if kind != "" && kind != gymserver.KindMachine && kind != gymserver.KindGrip {
		abortWithError(c, http.StatusBadRequest, "invalid type", gymserver.ErrInvalid)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "no image provided", err)
		return
	}

	src, err := file.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to read upload", err)
		return
	}
	mtype, err := mimetype.DetectReader(src)
	src.Close()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to read upload", err)
		return
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		abortWithError(c, http.StatusBadRequest, "file is not an image", gymserver.ErrInvalid)
		return
	}

	filename := gymserver.StoredFilename(file.Filename, time.Now())
	if err := c.SaveUploadedFile(file, filepath.Join(s.catalog.UploadDir(), filename)); err != nil {
		abortWithError(c, http.StatusInternalServerError, "fail to store image", err)
		return
	}

	record, err := s.catalog.RegisterUpload(filename, c.PostForm("name"), kind, c.PostForm("machineFor"))
	if err != nil {
		// the image is on disk without a record; surface that instead of
		// pretending the upload never happened
		log.Error("image stored but metadata not saved",
			zap.String("filename", filename), zap.Error(err), log.SourceAPI)
		traceutils.CaptureException(c, err)

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "image stored but metadata not saved",
			"metadataSaved": false,
			"data": gin.H{
				"filename": filename,
				"url":      s.catalog.ImageURL(filename),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "image uploaded",
		"metadataSaved": true,
		"data": gin.H{
			"filename": filename,
			"name":     record.Name,
			"type":     record.Type,
			"url":      s.catalog.ImageURL(filename),
		},
	})
}

// EditExercise updates a record's display name and association, optionally
// replacing the image file. Replacing changes the external id.
func (s *GymServer) EditExercise(c *gin.Context) {
	traceutils.SetHandlerTag(c, "EditExercise")

	filename := filepath.Base(c.PostForm("filename"))
	if filename == "" || filename == "." {
		abortWithError(c, http.StatusBadRequest, "filename is required", gymserver.ErrInvalid)
		return
	}

	var newFilename string
	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "fail to read upload", err)
			return
		}
		mtype, err := mimetype.DetectReader(src)
		src.Close()
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "fail to read upload", err)
			return
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			abortWithError(c, http.StatusBadRequest, "file is not an image", gymserver.ErrInvalid)
			return
		}

		newFilename = gymserver.StoredFilename(file.Filename, time.Now())
		if err := c.SaveUploadedFile(file, filepath.Join(s.catalog.UploadDir(), newFilename)); err != nil {
			abortWithError(c, http.StatusInternalServerError, "fail to store image", err)
			return
		}
	}

	record, err := s.catalog.Edit(filename, c.PostForm("name"), c.PostForm("machineFor"), newFilename)
	if err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "no metadata record for file", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to edit image", err)
		return
	}

	currentFilename := filename
	if newFilename != "" {
		currentFilename = newFilename
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "image updated",
		"data": gin.H{
			"oldFilename":  filename,
			"filename":     currentFilename,
			"name":         record.Name,
			"imageChanged": newFilename != "",
			"url":          s.catalog.ImageURL(currentFilename),
		},
	})
}

// DeleteExercise removes an image and its record. Machine deletions cascade
// to the machine's association rows.
func (s *GymServer) DeleteExercise(c *gin.Context) {
	traceutils.SetHandlerTag(c, "DeleteExercise")

	filename := filepath.Base(c.Param("filename"))

	if err := s.catalog.Delete(c, filename); err != nil {
		if errors.Is(err, gymserver.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "file not found", err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "fail to delete image", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "image deleted",
		"data": gin.H{
			"filename": filename,
		},
	})
}
