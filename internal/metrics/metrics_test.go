// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount extracts the sample count of a histogram.
func histogramCount(t *testing.T, h prometheus.Metric) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordTrainingCycle(t *testing.T) {
	countBefore := histogramCount(t, TrainingCycleDuration)
	timeoutBefore := testutil.ToFloat64(TrainingCycles.WithLabelValues("timeout"))

	RecordTrainingCycle("timeout", 60*time.Second)

	if got := histogramCount(t, TrainingCycleDuration) - countBefore; got != 1 {
		t.Errorf("TrainingCycleDuration samples delta = %d, want 1", got)
	}
	if got := testutil.ToFloat64(TrainingCycles.WithLabelValues("timeout")) - timeoutBefore; got != 1 {
		t.Errorf("TrainingCycles{timeout} delta = %v, want 1", got)
	}
}

func TestRecordModelFit(t *testing.T) {
	mse, ok := TrainingValidationMSE.WithLabelValues("ridge").(prometheus.Metric)
	if !ok {
		t.Fatal("validation MSE observer is not a prometheus.Metric")
	}
	mseBefore := histogramCount(t, mse)
	samplesBefore := histogramCount(t, TrainingSamples)

	RecordModelFit("ridge", 12, 0.4)

	if got := histogramCount(t, mse) - mseBefore; got != 1 {
		t.Errorf("TrainingValidationMSE{ridge} samples delta = %d, want 1", got)
	}
	if got := histogramCount(t, TrainingSamples) - samplesBefore; got != 1 {
		t.Errorf("TrainingSamples samples delta = %d, want 1", got)
	}
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErr   string
	}{
		{"successful select", "select", "articles", nil, ""},
		{"failed insert", "insert", "interactions", errors.New("connection refused"), "connection refused"},
		{
			"long error is truncated",
			"upsert", "training_state",
			errors.New(strings.Repeat("x", 80)),
			strings.Repeat("x", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)

			if tt.err == nil {
				return
			}
			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantErr))
			if got < 1 {
				t.Errorf("DBQueryErrors{%s,%s,%q} = %v, want >= 1", tt.operation, tt.table, tt.wantErr, got)
			}
		})
	}
}

func TestRecordUserOutcome(t *testing.T) {
	before := testutil.ToFloat64(TrainingUserOutcomes.WithLabelValues("skipped"))
	RecordUserOutcome("skipped")
	RecordUserOutcome("skipped")
	after := testutil.ToFloat64(TrainingUserOutcomes.WithLabelValues("skipped"))

	if after-before != 2 {
		t.Errorf("TrainingUserOutcomes{skipped} delta = %v, want 2", after-before)
	}
}

func TestRecordRanking(t *testing.T) {
	coldBefore := testutil.ToFloat64(RankingRequests.WithLabelValues("cold_start"))
	persBefore := testutil.ToFloat64(RankingRequests.WithLabelValues("personalized"))

	RecordRanking(true, time.Millisecond)
	RecordRanking(false, time.Millisecond)
	RecordRanking(false, time.Millisecond)

	if got := testutil.ToFloat64(RankingRequests.WithLabelValues("cold_start")) - coldBefore; got != 1 {
		t.Errorf("cold_start delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RankingRequests.WithLabelValues("personalized")) - persBefore; got != 2 {
		t.Errorf("personalized delta = %v, want 2", got)
	}
}

func TestSetDirtyUsers(t *testing.T) {
	SetDirtyUsers(7)
	if got := testutil.ToFloat64(TrainingDirtyUsers); got != 7 {
		t.Errorf("TrainingDirtyUsers = %v, want 7", got)
	}
	SetDirtyUsers(0)
	if got := testutil.ToFloat64(TrainingDirtyUsers); got != 0 {
		t.Errorf("TrainingDirtyUsers = %v, want 0", got)
	}
}

func TestRecordModelStore(t *testing.T) {
	okBefore := testutil.ToFloat64(ModelStoreOperations.WithLabelValues("file", "save", "success"))
	errBefore := testutil.ToFloat64(ModelStoreOperations.WithLabelValues("file", "save", "error"))

	RecordModelStore("file", "save", nil)
	RecordModelStore("file", "save", errors.New("disk full"))

	if got := testutil.ToFloat64(ModelStoreOperations.WithLabelValues("file", "save", "success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ModelStoreOperations.WithLabelValues("file", "save", "error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordBackfill(t *testing.T) {
	embBefore := testutil.ToFloat64(BackfillArticles.WithLabelValues("embedded"))
	failBefore := testutil.ToFloat64(BackfillArticles.WithLabelValues("failed"))

	RecordBackfill(5, 2)

	if got := testutil.ToFloat64(BackfillArticles.WithLabelValues("embedded")) - embBefore; got != 5 {
		t.Errorf("embedded delta = %v, want 5", got)
	}
	if got := testutil.ToFloat64(BackfillArticles.WithLabelValues("failed")) - failBefore; got != 2 {
		t.Errorf("failed delta = %v, want 2", got)
	}
}

func TestRecordEmbeddingRequest(t *testing.T) {
	model := "test-embed-model"

	RecordEmbeddingRequest(model, "success", 20*time.Millisecond)
	RecordEmbeddingRequest(model, "rejected", 0)

	if n := testutil.ToFloat64(EmbeddingRequests.WithLabelValues(model, "success")); n != 1 {
		t.Errorf("EmbeddingRequests{success} = %v, want 1", n)
	}
	if n := testutil.ToFloat64(EmbeddingRequests.WithLabelValues(model, "rejected")); n != 1 {
		t.Errorf("EmbeddingRequests{rejected} = %v, want 1", n)
	}
}
