package service

import (
	"context"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/speakerdb"
)

// SpeakerTotals counts enrolled speakers and their embeddings.
type SpeakerTotals struct {
	TotalCount      int `json:"total_count"`
	TotalEmbeddings int `json:"total_embeddings"`
}

// StatsResult summarizes the speaker store and the configured models.
type StatsResult struct {
	Database *speakerdb.Stats `json:"database"`
	Speakers SpeakerTotals    `json:"speakers"`
	System   Models           `json:"system"`
}

// Stats reports store statistics, speaker totals and model names.
func (s *Service) Stats(ctx context.Context) (*StatsResult, error) {
	dbStats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	speakers, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	totals := SpeakerTotals{TotalCount: len(speakers)}
	for _, sp := range speakers {
		totals.TotalEmbeddings += sp.EmbeddingCount
	}
	return &StatsResult{Database: dbStats, Speakers: totals, System: s.models}, nil
}

// HealthReport is the readiness of the service and its collaborators.
type HealthReport struct {
	Status         component.HealthStatus `json:"status"`
	Version        string                 `json:"version"`
	ModelsLoaded   bool                   `json:"models_loaded"`
	StoreConnected bool                   `json:"store_connected"`
	Producers      map[string]bool        `json:"producers"`
}

// Health probes every producer and the store. The service is degraded when
// any of them is unreachable; it keeps serving whatever still works.
func (s *Service) Health(ctx context.Context) *HealthReport {
	producers := map[string]bool{
		s.diarizer.Name():    s.diarizer.IsAvailable(ctx),
		s.embedder.Name():    s.embedder.IsAvailable(ctx),
		s.transcriber.Name(): s.transcriber.IsAvailable(ctx),
	}
	report := &HealthReport{
		Status:         component.StatusHealthy,
		Version:        s.version,
		ModelsLoaded:   true,
		StoreConnected: s.store.Ping(ctx) == nil,
		Producers:      producers,
	}
	for _, ok := range producers {
		report.ModelsLoaded = report.ModelsLoaded && ok
	}
	if !report.ModelsLoaded || !report.StoreConnected {
		report.Status = component.StatusDegraded
		s.log.WithContext(ctx).Warn("service degraded", map[string]interface{}{
			"producers":       producers,
			"store_connected": report.StoreConnected,
		})
	}
	return report
}
