// Package handlers exposes the merge pipeline over HTTP. The serve mode is
// an alternative front end to the same orchestrator the CLI drives; uploads
// are spooled to a scratch directory and classified exactly like CLI inputs.
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/fuse"
	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// Server carries the parameter template every request starts from.
type Server struct {
	defaults params.Parameters
}

// RegisterRoutes attaches the API to the router.
func RegisterRoutes(router *gin.Engine, defaults params.Parameters) {
	s := &Server{defaults: defaults}
	api := router.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.POST("/merge", s.handleMerge)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMerge fuses the uploaded files, preserving multipart order, and
// responds with the merged PDF.
func (s *Server) handleMerge(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	p := s.defaults
	if mode := c.Query("bookmarks"); mode != "" {
		parsed, err := params.ParseBookmarkMode(mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.Bookmarks = parsed
	}
	if c.Query("lossless") == "true" {
		p.ImageLosslessCompression = true
	}

	scratch, err := utils.CreateTempDir()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot create scratch directory"})
		return
	}
	defer os.RemoveAll(scratch)

	var sources []utils.Indexed[params.SourcePath]
	for i, fh := range files {
		// numbered prefix keeps duplicate upload names apart
		dst := filepath.Join(scratch, fmt.Sprintf("%04d_%s", i, filepath.Base(fh.Filename)))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot spool upload"})
			return
		}
		sp, err := params.ClassifyPath(dst)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file: %s", fh.Filename)})
			return
		}
		sources = append(sources, utils.NewIndexed(len(sources), sp))
	}

	p.OutputFile = filepath.Join(scratch, "merged.pdf")
	report, err := fuse.Run(sources, p, utils.NewProgress(false))
	if err != nil {
		log.WithError(err).Error("merge request failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	merged, err := os.Open(p.OutputFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merged file missing"})
		return
	}
	defer merged.Close()
	info, _ := merged.Stat()

	if report.ErrorCount > 0 {
		c.Header("X-Skipped-Inputs", fmt.Sprint(report.ErrorIndices))
	}
	c.Header("Content-Disposition", `attachment; filename="merged.pdf"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", merged, nil)
}
