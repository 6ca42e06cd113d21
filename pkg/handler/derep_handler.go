package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/ggderep/logger"
	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/handler/request"
	"github.com/yumyai/ggderep/pkg/middle"
	"github.com/yumyai/ggderep/pkg/pick"
)

// maxBodyBytes bounds a submitted request; matrices grow with the square of
// the genome count.
const maxBodyBytes = 256 << 20

type JobAccepted struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Dereplicate validates a request and runs it as a background job.
func (s *Server) Dereplicate(w http.ResponseWriter, r *http.Request) {
	var req request.DereplicateRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger().Debug("Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	cfg, err := s.requestConfig(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	set, err := req.MatrixSet()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	genomes, err := req.GenomeTable()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if genomes == nil {
		genomes = s.Genomes
	}

	job := s.Jobs.NewJob()
	log := middle.Logger(r.Context(), s.logger()).With(zap.String("job_id", job.ID))
	d, err := derep.New(cfg,
		derep.WithReporter(logger.NewReporter(log, s.ProgressEvery)),
		derep.WithMetrics(s.Metrics))
	if err != nil {
		s.Jobs.FailJob(job.ID, err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	in := derep.Input{Matrices: set, Genomes: genomes}
	s.Jobs.Go(func(ctx context.Context) {
		s.runJob(ctx, log, job.ID, d, in)
	})

	writeJSON(w, http.StatusAccepted, JobAccepted{JobID: job.ID, Status: job.Status})
}

func (s *Server) runJob(ctx context.Context, log *zap.Logger, jobID string, d *derep.Dereplicator, in derep.Input) {
	s.Jobs.SetRunning(jobID)
	res, err := d.Run(ctx, in)
	if err != nil {
		log.Warn("Dereplication failed", zap.Error(err))
		s.Jobs.FailJob(jobID, err)
		return
	}
	log.Info("Dereplication completed",
		zap.String("run_id", res.RunID),
		zap.Int("clusters", res.Summary.Clusters))
	s.Jobs.CompleteJob(jobID, res)
}

// GetJob reports the state of a job and, once completed, its result.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := s.Jobs.GetJob(jobID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "job not found"})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) requestConfig(req request.DereplicateRequest) (derep.Config, error) {
	cfg := s.Config
	var err error
	if req.Program != "" {
		if cfg.Program, err = derep.ParseProgram(req.Program); err != nil {
			return cfg, err
		}
	}
	if req.RepresentativeMethod != "" {
		if cfg.Method, err = pick.ParseMethod(req.RepresentativeMethod); err != nil {
			return cfg, err
		}
	}
	if req.DistanceDirection != "" {
		if cfg.Direction, err = pick.ParseDirection(req.DistanceDirection); err != nil {
			return cfg, err
		}
	}
	if req.UseFullPercentIdentity != nil {
		cfg.UseFullPercentIdentity = *req.UseFullPercentIdentity
	}
	if req.DistanceThreshold != nil {
		cfg.DistanceThreshold = *req.DistanceThreshold
	}
	if req.MinFullPercentIdentity != nil {
		cfg.Suppress.MinFullPercentIdentity = *req.MinFullPercentIdentity
	}
	if req.MinAlignmentFraction != nil {
		cfg.Suppress.MinAlignmentFraction = *req.MinAlignmentFraction
	}
	if req.SignificantAlignmentLength != nil {
		cfg.Suppress.SignificantAlignmentLength = *req.SignificantAlignmentLength
	}
	return cfg, cfg.Validate()
}
