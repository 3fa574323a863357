package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/domain"
)

type predictRequest struct {
	Symptoms []string `json:"symptoms" binding:"required"`
}

type createRecordRequest struct {
	Name          string   `json:"name" binding:"required"`
	Phone         string   `json:"phone"`
	AdmissionDate string   `json:"admission_date"`
	Symptoms      []string `json:"symptoms" binding:"required"`
}

type trainRequest struct {
	Examples []trainExample `json:"examples"`
}

type trainExample struct {
	Symptoms []string `json:"symptoms" binding:"required"`
	Disease  string   `json:"disease" binding:"required"`
}

type importRequest struct {
	Version      string                   `json:"version"`
	TrainingData []domain.TrainingExample `json:"training_data"`
}

// handleHealth reports service liveness, storage counts and model state.
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	recordCount, err := s.records.Count(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Health check failed on record store")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	exampleCount, err := s.corpus.CountTrainingExamples(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Health check failed on corpus store")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"timestamp":         time.Now().UTC(),
		"records":           recordCount,
		"training_examples": exampleCount,
		"model":             s.engine.Info(),
	})
}

// handlePredict classifies a symptom set. Prediction never fails: an empty
// or unrecognized set answers with the Unknown sentinel.
func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symptoms field is required"})
		return
	}

	prediction := s.engine.Predict(domain.SymptomSet(req.Symptoms))
	c.JSON(http.StatusOK, prediction)
}

// handleCreateRecord stores an intake record with the prediction attached.
func (s *Server) handleCreateRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and symptoms are required"})
		return
	}

	prediction := s.engine.Predict(domain.SymptomSet(req.Symptoms))

	record := &domain.IntakeRecord{
		Name:          req.Name,
		Phone:         req.Phone,
		AdmissionDate: req.AdmissionDate,
		Symptoms:      domain.SymptomSet(req.Symptoms).Normalize(),
		Disease:       prediction.Disease,
		Confidence:    prediction.Confidence,
		Status:        domain.StatusFor(prediction),
	}

	if err := s.records.Create(c.Request.Context(), record); err != nil {
		s.logger.WithError(err).Error("Failed to store intake record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// handleListRecords returns all intake records, newest first.
func (s *Server) handleListRecords(c *gin.Context) {
	records, err := s.records.List(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list intake records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}
	if records == nil {
		records = []*domain.IntakeRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// handleDeleteRecord removes one record by ID.
func (s *Server) handleDeleteRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := s.records.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to delete intake record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleTrain optionally appends examples to the corpus, then retrains and
// persists the model. An empty corpus is reported, not fatal: the engine
// keeps serving fallback answers.
func (s *Server) handleTrain(c *gin.Context) {
	ctx := c.Request.Context()

	// The body is optional. Chunked requests report ContentLength -1, so
	// always attempt the bind and treat only an empty body (EOF) as "no
	// appended examples".
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed training payload"})
		return
	}

	for _, ex := range req.Examples {
		example := domain.TrainingExample{
			Symptoms: domain.SymptomSet(ex.Symptoms),
			Disease:  ex.Disease,
		}
		if err := s.corpus.AddTrainingExample(ctx, example); err != nil {
			s.logger.WithError(err).Error("Failed to store training example")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store training example"})
			return
		}
	}

	if err := s.engine.Train(ctx); err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "training corpus is empty"})
			return
		}
		s.logger.WithError(err).Error("Training failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "training failed"})
		return
	}

	if err := s.engine.SaveModel(ctx); err != nil {
		// The new model is live; persistence failure only affects restarts.
		s.logger.WithError(err).Warn("Trained model could not be persisted")
	}

	c.JSON(http.StatusOK, gin.H{
		"trained":  true,
		"appended": len(req.Examples),
		"model":    s.engine.Info(),
	})
}

// handleListTrainingData returns the full training corpus.
func (s *Server) handleListTrainingData(c *gin.Context) {
	examples, err := s.corpus.ListTrainingExamples(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list training data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list training data"})
		return
	}
	if examples == nil {
		examples = []domain.TrainingExample{}
	}

	c.JSON(http.StatusOK, gin.H{"examples": examples, "count": len(examples)})
}

// handleClearTrainingData wipes operator-provided examples and retrains on
// the built-in seed corpus so the engine never regresses to untrained.
func (s *Server) handleClearTrainingData(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.corpus.ClearTrainingExamples(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to clear training data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear training data"})
		return
	}

	if err := s.engine.TrainWith(ctx, domain.DefaultTrainingCorpus()); err != nil {
		s.logger.WithError(err).Error("Retraining on seed corpus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retraining failed"})
		return
	}

	s.logger.Info("Training data cleared, model retrained on seed corpus")
	c.JSON(http.StatusOK, gin.H{"cleared": true, "model": s.engine.Info()})
}

// handleExport emits a versioned JSON snapshot of records and corpus.
func (s *Server) handleExport(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := s.records.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Export failed on record store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	examples, err := s.corpus.ListTrainingExamples(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Export failed on corpus store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	if records == nil {
		records = []*domain.IntakeRecord{}
	}
	if examples == nil {
		examples = []domain.TrainingExample{}
	}

	export := domain.DataExport{
		Version:      domain.ExportVersion,
		ExportedAt:   time.Now().UTC(),
		RecordCount:  len(records),
		ExampleCount: len(examples),
		Records:      records,
		TrainingData: examples,
	}

	c.Header("Content-Disposition", "attachment; filename=intake-export.json")
	c.JSON(http.StatusOK, export)
}

// handleImport merges exported training data back into the corpus, skipping
// examples already present, then retrains.
func (s *Server) handleImport(c *gin.Context) {
	ctx := c.Request.Context()

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed import payload"})
		return
	}
	if req.Version != "" && req.Version != domain.ExportVersion {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export version: " + req.Version})
		return
	}

	existing, err := s.corpus.ListTrainingExamples(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Import failed reading corpus")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	seen := make(map[string]struct{}, len(existing))
	for _, ex := range existing {
		seen[corpusKey(ex)] = struct{}{}
	}

	imported, skipped := 0, 0
	for _, ex := range req.TrainingData {
		key := corpusKey(ex)
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		if err := s.corpus.AddTrainingExample(ctx, ex); err != nil {
			s.logger.WithError(err).Error("Import failed writing corpus")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
			return
		}
		seen[key] = struct{}{}
		imported++
	}

	if imported > 0 {
		if err := s.engine.Train(ctx); err != nil {
			s.logger.WithError(err).Warn("Retraining after import failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("Training data imported")
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

// handleModelInfo reports the engine's lifecycle state and known diseases.
func (s *Server) handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Info())
}

// corpusKey identifies an example by its canonical symptoms and label.
func corpusKey(ex domain.TrainingExample) string {
	return ex.Symptoms.Key() + "\x1f" + ex.Disease
}
