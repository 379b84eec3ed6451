// Package cleanup removes leftovers from finished or crashed generation
// runs: stale per-job work directories and terminal job rows past the
// retention window.
package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gracecast/gracecast-api/internal/services/jobs"
)

// Service periodically sweeps the work directory and the job table.
type Service struct {
	workDir       string
	maxAge        time.Duration
	interval      time.Duration
	retentionDays int
	jobService    jobs.Service
	cancel        context.CancelFunc
}

// NewService creates a cleanup service. jobService may be nil to only
// sweep the filesystem.
func NewService(workDir string, maxAge, interval time.Duration, retentionDays int, jobService jobs.Service) *Service {
	return &Service{
		workDir:       workDir,
		maxAge:        maxAge,
		interval:      interval,
		retentionDays: retentionDays,
		jobService:    jobService,
	}
}

// Start begins the periodic sweep. The first sweep runs immediately so a
// restart after a crash reclaims disk right away.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.sweep(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max age: %v)", s.interval, s.maxAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) sweep(ctx context.Context) {
	s.sweepWorkDirs()
	s.sweepJobs(ctx)
}

// sweepWorkDirs removes per-job work directories whose last modification
// is older than maxAge. Active jobs touch their directory continuously,
// so only abandoned runs age out.
func (s *Service) sweepWorkDirs() {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ERROR] Cleanup: reading work dir %s: %v", s.workDir, err)
		}
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "job_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= s.maxAge {
			continue
		}

		path := filepath.Join(s.workDir, entry.Name())
		log.Printf("[DEBUG] Removing stale work directory: %s", path)
		if err := os.RemoveAll(path); err != nil {
			log.Printf("[WARN] Failed to remove work directory %s: %v", path, err)
		}
	}
}

// sweepJobs deletes terminal job rows past the retention window.
func (s *Service) sweepJobs(ctx context.Context) {
	if s.jobService == nil || s.retentionDays <= 0 {
		return
	}

	deleted, err := s.jobService.CleanupOldJobs(ctx, s.retentionDays)
	if err != nil {
		log.Printf("[ERROR] Cleanup: deleting old jobs: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[DEBUG] Cleanup removed %d old job(s)", deleted)
	}
}
