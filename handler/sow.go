package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mattalagalams/nsp-agent/config"
	"github.com/mattalagalams/nsp-agent/model"
	"github.com/mattalagalams/nsp-agent/pkg/logger"
	"github.com/mattalagalams/nsp-agent/service"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// DocumentArchive keeps original uploads in an object store. Archiving is
// best-effort: a failed call degrades the response, never the proposal.
type DocumentArchive interface {
	StoreDocument(ctx context.Context, uploadID, filename string, content []byte) (string, error)
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteDocument(ctx context.Context, objectName string) error
}

type SOWHandler struct {
	svc       *service.ProposalService
	store     service.ProposalStore
	archive   DocumentArchive // nil when archiving is disabled
	maxUpload int64
	startedAt time.Time
}

func NewSOWHandler(svc *service.ProposalService, store service.ProposalStore, archive DocumentArchive, cfg *config.Config) *SOWHandler {
	return &SOWHandler{
		svc:       svc,
		store:     store,
		archive:   archive,
		maxUpload: int64(cfg.Upload.MaxSizeMB) * 1024 * 1024,
		startedAt: time.Now(),
	}
}

// Process handles a SOW document upload: validate, submit to the agent
// runtime, wait for the proposal, cache it and reply. Either a complete
// artifact is produced and cached, or an error is returned and nothing is
// cached for that job.
func (h *SOWHandler) Process(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "No file selected"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  fmt.Sprintf("Unsupported file type: %s. Supported: .pdf, .docx, .doc, .txt", ext),
		})
		return
	}

	if header.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  fmt.Sprintf("File too large: maximum size is %d MB", h.maxUpload/(1024*1024)),
		})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Failed to read file"})
		return
	}
	if len(content) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "File is empty"})
		return
	}
	if int64(len(content)) > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  fmt.Sprintf("File too large: maximum size is %d MB", h.maxUpload/(1024*1024)),
		})
		return
	}

	ctx := c.Request.Context()

	var archivedObject string
	if h.archive != nil {
		uploadID := uuid.New().String()
		objectName, err := h.archive.StoreDocument(ctx, uploadID, header.Filename, content)
		if err != nil {
			logger.Warn(ctx, "failed to archive upload", "filename", header.Filename, "error", err)
		} else {
			archivedObject = objectName
			logger.Info(ctx, "upload archived", "object", objectName)
		}
	}

	result, err := h.svc.ProcessDocument(ctx, content, header.Filename)
	if err != nil {
		logger.Error(ctx, "processing failed", "filename", header.Filename, "error", err)
		// No proposal means nothing to retain; drop the archived original
		if archivedObject != "" {
			if delErr := h.archive.DeleteDocument(ctx, archivedObject); delErr != nil {
				logger.Warn(ctx, "failed to remove archived upload", "object", archivedObject, "error", delErr)
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Processing failed: " + err.Error(),
		})
		return
	}

	artifact := &model.Artifact{
		ThreadID:   result.ThreadID,
		Proposal:   result.Proposal,
		Filename:   header.Filename,
		ProducedAt: time.Now(),
	}
	if err := h.store.Put(ctx, artifact); err != nil {
		// The proposal is still returned inline; only the download path is
		// degraded.
		logger.Warn(ctx, "failed to cache proposal", "thread_id", result.ThreadID, "error", err)
	}

	resp := gin.H{
		"status":          "success",
		"proposal":        result.Proposal,
		"thread_id":       result.ThreadID,
		"processing_time": result.ProcessingTime.Seconds(),
		"timestamp":       time.Now().Format(time.RFC3339),
		"agent_used":      result.AgentUsed,
		"model_used":      result.ModelUsed,
		"filename":        header.Filename,
		"document_length": result.DocumentLength,
	}
	if archivedObject != "" {
		if url, err := h.archive.GetPresignedURL(ctx, archivedObject); err != nil {
			logger.Warn(ctx, "failed to presign archived upload", "object", archivedObject, "error", err)
		} else {
			resp["source_document_url"] = url
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Download serves a cached proposal as a plain-text attachment.
func (h *SOWHandler) Download(c *gin.Context) {
	threadID := c.Param("thread_id")

	artifact, err := h.store.Get(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	downloadName := fmt.Sprintf("Azure-Proposal-%s.txt", sanitizeFilename(artifact.Filename))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(artifact.Proposal))
}

// Health reports liveness and which backend mode is active.
func (h *SOWHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "NSP Agent Portal",
		"timestamp":         time.Now().Format(time.RFC3339),
		"azure_integration": h.svc.Runtime().Name(),
	})
}

// Stats reports basic usage statistics.
func (h *SOWHandler) Stats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals_generated": count,
		"active_jobs":         len(h.svc.ActiveJobs()),
		"service_type":        h.svc.Runtime().Name(),
		"uptime_seconds":      int(time.Since(h.startedAt).Seconds()),
	})
}

// sanitizeFilename keeps alphanumerics, spaces, dashes and underscores, and
// strips the original extension.
func sanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
