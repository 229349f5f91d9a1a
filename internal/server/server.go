package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/contactmerge/internal/app"
	"github.com/agenthands/contactmerge/internal/config"
	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/export"
	"github.com/agenthands/contactmerge/internal/logger"
	"github.com/agenthands/contactmerge/internal/vcard"
)

type Server struct {
	Services *app.Services
	logger   logger.Logger
}

func NewServer(services *app.Services) *Server {
	l := services.Logger
	if l == nil {
		l = logger.NewNop()
	}
	return &Server{
		Services: services,
		logger:   l,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	if limit := s.Services.Config.Server.MaxBodyBytes; limit > 0 {
		r.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
			c.Next()
		})
	}

	r.GET("/healthz", s.Healthz)
	r.POST("/dedupe", s.Dedupe)
	r.POST("/dedupe/vcard", s.DedupeVCard)
	r.POST("/export/csv", s.ExportCSV)

	return r
}

type DedupeRequest struct {
	Contacts       []*model.Contact `json:"contacts"`
	FuzzyThreshold *int             `json:"fuzzy_threshold"`
}

type ContactsRequest struct {
	Contacts []*model.Contact `json:"contacts"`
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// threshold resolves the request threshold against the configured default.
func (s *Server) threshold(requested *int) (int, error) {
	t := s.Services.Config.Detection.FuzzyThreshold
	if requested != nil {
		t = *requested
	}
	return t, config.ValidateThreshold(t)
}

func (s *Server) Dedupe(c *gin.Context) {
	var req DedupeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	threshold, err := s.threshold(req.FuzzyThreshold)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.Services.Deduplicator(threshold).Run(c.Request.Context(), req.Contacts)
	if err != nil {
		s.logger.Error("Deduplication failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduplicate contacts"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// DedupeVCard reads a vCard stream and answers with the deduplicated stream.
// The threshold comes from the fuzzy_threshold query parameter.
func (s *Server) DedupeVCard(c *gin.Context) {
	var requested *int
	if raw := c.Query("fuzzy_threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fuzzy_threshold must be an integer"})
			return
		}
		requested = &v
	}
	threshold, err := s.threshold(requested)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	contacts, err := vcard.Decode(bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vCard data"})
		return
	}
	if len(contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No contacts found"})
		return
	}

	out, err := s.Services.Deduplicator(threshold).Run(c.Request.Context(), contacts)
	if err != nil {
		s.logger.Error("Deduplication failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduplicate contacts"})
		return
	}

	var buf bytes.Buffer
	if err := vcard.Encode(&buf, out.Final); err != nil {
		s.logger.Error("Failed to encode vCard output", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode contacts"})
		return
	}

	c.Header("X-Run-ID", out.RunID)
	c.Header("X-Duplicate-Groups", strconv.Itoa(out.Stats.DuplicateGroups))
	c.Header("X-Final-Contacts", strconv.Itoa(out.Stats.FinalContacts))
	c.Data(http.StatusOK, "text/vcard; charset=utf-8", buf.Bytes())
}

func (s *Server) ExportCSV(c *gin.Context) {
	var req ContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, req.Contacts); err != nil {
		s.logger.Error("Failed to export csv", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export contacts"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="contacts.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
