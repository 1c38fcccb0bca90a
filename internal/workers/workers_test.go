// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/stretchr/testify/assert"
)

// recordingWorker appends its id to a shared log on every lifecycle call.
type recordingWorker struct {
	id  int
	log *[]string
}

func (r *recordingWorker) Start(context.Context) {
	*r.log = append(*r.log, "start", string(rune('0'+r.id)))
}

func (r *recordingWorker) Stop() {
	*r.log = append(*r.log, "stop", string(rune('0'+r.id)))
}

var _ Worker = (*Scheduler)(nil)

func TestWorkers_StartInOrderStopInReverse(t *testing.T) {
	var log []string
	ws := NewWorkers(
		&recordingWorker{id: 1, log: &log},
		&recordingWorker{id: 2, log: &log},
		&recordingWorker{id: 3, log: &log},
	)

	ws.Start(context.Background())
	ws.Stop()

	assert.Equal(t, []string{
		"start", "1", "start", "2", "start", "3",
		"stop", "3", "stop", "2", "stop", "1",
	}, log)
}

func TestWorkers_Empty(t *testing.T) {
	// Should not panic on empty workers list
	ws := NewWorkers()
	ws.Start(context.Background())
	ws.Stop()

	var zero Workers
	zero.Start(context.Background())
	zero.Stop()
}

func TestWorkers_WithScheduler(t *testing.T) {
	s := NewScheduler(logger.Nop())
	ws := NewWorkers(s)
	ws.Start(context.Background())
	ws.Stop()
}
