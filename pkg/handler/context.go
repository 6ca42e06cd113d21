package handler

// DI for all handlers alike.

import (
	"go.uber.org/zap"

	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/metrics"
)

type Server struct {
	// Defaults for settings a request leaves unset.
	Config derep.Config
	// Genomes is the roster used when a request carries no genomes; may be nil.
	Genomes *genome.Table
	Jobs    *JobManager
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// ProgressEvery is how many scanned pairs the job log aggregates per line.
	ProgressEvery int
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
