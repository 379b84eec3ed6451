package types

import (
	"github.com/gracecast/gracecast-api/internal/database"
	"github.com/gracecast/gracecast-api/internal/services/episodes"
	"github.com/gracecast/gracecast-api/internal/services/jobs"
	"github.com/gracecast/gracecast-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	EpisodeService episodes.Service
	JobService     jobs.Service
	WorkerPool     *workers.WorkerPool
}
