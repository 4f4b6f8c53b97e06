// Package stats records per-scan telemetry: one ScanStats document per
// run, carrying the stats projection of every discovered subproject.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/scan"
	"github.com/depscope/depscope/pkg/subproject"
)

// ScanStats is the telemetry document of one scan run.
type ScanStats struct {
	RunID       string             `json:"run_id" bson:"run_id"`
	StartedAt   time.Time          `json:"started_at" bson:"started_at"`
	DurationMS  int64              `json:"duration_ms" bson:"duration_ms"`
	Subprojects []subproject.Stats `json:"subprojects" bson:"subprojects"`
}

// Collect builds the stats document for one scan result.
func Collect(result *scan.Result, startedAt time.Time, duration time.Duration) ScanStats {
	st := ScanStats{
		RunID:      uuid.NewString(),
		StartedAt:  startedAt,
		DurationMS: duration.Milliseconds(),
	}
	for _, u := range result.Unresolved {
		st.Subprojects = append(st.Subprojects, u.Subproject.Stats())
	}

	ecosystems := make([]string, 0, len(result.Resolved))
	for eco := range result.Resolved {
		ecosystems = append(ecosystems, string(eco))
	}
	sort.Strings(ecosystems)
	for _, eco := range ecosystems {
		for _, r := range result.Resolved[deps.Ecosystem(eco)] {
			st.Subprojects = append(st.Subprojects, r.Stats())
		}
	}
	return st
}

// Sink persists scan stats documents.
type Sink interface {
	Record(ctx context.Context, st ScanStats) error
	Close(ctx context.Context) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(context.Context, ScanStats) error { return nil }
func (NopSink) Close(context.Context) error             { return nil }
