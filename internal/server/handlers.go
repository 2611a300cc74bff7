package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invoice-extractor/internal/jobs"
	"invoice-extractor/internal/llm"
	"invoice-extractor/internal/models"
	"invoice-extractor/internal/pipeline"
	"invoice-extractor/pkg/utils"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "invoice-extractor",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// requestParser resolves which parser serves this request. A provider in the
// query or form overrides the server-level LLM configuration with the
// caller's own credential; without one the shared parser runs.
func (s *Server) requestParser(c *gin.Context) (invoiceParser, string, error) {
	provider := c.Query("provider")
	if provider == "" {
		provider = c.PostForm("provider")
	}
	if provider == "" {
		return s.parser, s.cfg.LLM.Provider, nil
	}

	key := c.GetHeader("X-LLM-API-Key")
	if key == "" {
		key = c.Query("llm_api_key")
	}
	parser, err := s.parserFor(pipeline.Options{LLM: &llm.Config{
		Provider: provider,
		APIKey:   key,
		Model:    s.cfg.LLM.Model,
		BaseURL:  s.cfg.LLM.BaseURL,
		Timeout:  s.cfg.LLM.Timeout,
	}})
	if err != nil {
		return nil, "", err
	}
	return parser, provider, nil
}

// handleParse accepts a multipart PDF upload, registers a job and processes
// it in the background. The response is the pending job for polling.
func (s *Server) handleParse(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if err := utils.ValidatePDFFilename(file.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parser, provider, err := s.requestParser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	safeName := utils.SanitizeFilename(file.Filename)
	job, err := s.store.Create(c.Request.Context(), safeName, provider)
	if err != nil {
		s.logger.Error("Failed to create parse job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	uploadPath := filepath.Join(s.cfg.Parser.UploadDir, job.ID+"_"+safeName)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		s.logger.Error("Failed to save upload", zap.Error(err))
		_ = s.store.Fail(c.Request.Context(), job.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	go s.processJob(parser, job.ID, uploadPath)

	c.JSON(http.StatusAccepted, job)
}

// handleBulkParse accepts several PDFs under the "files" field and registers
// a job per file. Files that fail validation are reported without blocking
// the rest of the batch.
func (s *Server) handleBulkParse(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'files' is required"})
		return
	}

	parser, provider, err := s.requestParser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted := make([]*jobs.Job, 0, len(files))
	rejected := make([]gin.H, 0)
	for _, file := range files {
		if err := utils.ValidatePDFFilename(file.Filename); err != nil {
			rejected = append(rejected, gin.H{"filename": file.Filename, "error": err.Error()})
			continue
		}
		safeName := utils.SanitizeFilename(file.Filename)
		job, err := s.store.Create(c.Request.Context(), safeName, provider)
		if err != nil {
			s.logger.Error("Failed to create parse job", zap.Error(err))
			rejected = append(rejected, gin.H{"filename": file.Filename, "error": "failed to create job"})
			continue
		}
		uploadPath := filepath.Join(s.cfg.Parser.UploadDir, job.ID+"_"+safeName)
		if err := c.SaveUploadedFile(file, uploadPath); err != nil {
			s.logger.Error("Failed to save upload", zap.Error(err))
			_ = s.store.Fail(c.Request.Context(), job.ID, err)
			rejected = append(rejected, gin.H{"filename": file.Filename, "error": "failed to store upload"})
			continue
		}
		go s.processJob(parser, job.ID, uploadPath)
		accepted = append(accepted, job)
	}

	status := http.StatusAccepted
	if len(accepted) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"jobs": accepted, "errors": rejected})
}

// processJob runs one parse end to end and records the outcome. It runs
// detached from the request, so it carries its own context. The uploaded
// file is removed once the job is settled either way.
func (s *Server) processJob(parser invoiceParser, jobID, pdfPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log := s.logger.With(zap.String("job_id", jobID))
	defer func() {
		if err := os.Remove(pdfPath); err != nil {
			log.Warn("Failed to remove uploaded file",
				zap.String("path", pdfPath),
				zap.Error(err))
		}
	}()
	if err := s.store.MarkProcessing(ctx, jobID); err != nil {
		log.Error("Failed to mark job processing", zap.Error(err))
		return
	}

	res, err := parser.Parse(ctx, pdfPath)
	if err != nil {
		log.Error("Parse failed", zap.Error(err))
		_ = s.store.Fail(ctx, jobID, err)
		return
	}

	invoiceCSV := jobID + "_invoices.csv"
	itemsCSV := jobID + "_line_items.csv"
	workbook := jobID + ".xlsx"

	outDir := s.cfg.Storage.OutputDir
	records := []models.InvoiceRecord{res.Invoice}
	if err := s.writer.WriteInvoiceCSV(filepath.Join(outDir, invoiceCSV), records); err != nil {
		log.Error("Failed to write invoice CSV", zap.Error(err))
		_ = s.store.Fail(ctx, jobID, err)
		return
	}
	if err := s.writer.WriteLineItemsCSV(filepath.Join(outDir, itemsCSV), res.LineItems); err != nil {
		log.Error("Failed to write line items CSV", zap.Error(err))
		_ = s.store.Fail(ctx, jobID, err)
		return
	}
	if err := s.writer.WriteWorkbook(filepath.Join(outDir, workbook), records, res.LineItems); err != nil {
		log.Error("Failed to write workbook", zap.Error(err))
		_ = s.store.Fail(ctx, jobID, err)
		return
	}

	if err := s.store.Complete(ctx, jobID, res.Serial, invoiceCSV, itemsCSV, workbook); err != nil {
		log.Error("Failed to mark job completed", zap.Error(err))
		return
	}
	log.Info("Parse job completed",
		zap.String("serial", res.Serial),
		zap.String("method", res.TextMethod.String()),
		zap.Int("line_items", len(res.LineItems)))
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to load job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleListJobs(c *gin.Context) {
	listed, err := s.store.List(c.Request.Context(), 50)
	if err != nil {
		s.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	if listed == nil {
		listed = []*jobs.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": listed})
}

// handleDownload serves a generated output file by name. Names are
// sanitized; only files inside the output directory are reachable.
func (s *Server) handleDownload(c *gin.Context) {
	name := utils.SanitizeFilename(c.Param("name"))
	path := filepath.Join(s.cfg.Storage.OutputDir, name)

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(path, name)
}
