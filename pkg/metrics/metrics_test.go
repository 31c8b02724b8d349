package metrics

import (
	"testing"
	"time"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmissionIncrementsCounterByModeAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(reg)

	s.ObserveSubmission(hook.ModeNormal, true, 10*time.Millisecond)
	s.ObserveSubmission(hook.ModeNormal, false, 5*time.Millisecond)
	s.ObserveSubmission(hook.ModeForced, true, 1*time.Millisecond)

	if got := testutil.ToFloat64(s.submissions.WithLabelValues("Normal", "committed")); got != 1 {
		t.Errorf("expected 1 committed Normal submission, got %v", got)
	}
	if got := testutil.ToFloat64(s.submissions.WithLabelValues("Normal", "rejected")); got != 1 {
		t.Errorf("expected 1 rejected Normal submission, got %v", got)
	}
	if got := testutil.ToFloat64(s.submissions.WithLabelValues("Forced", "committed")); got != 1 {
		t.Errorf("expected 1 committed Forced submission, got %v", got)
	}
}

func TestSetActiveNexusCountReportsLatestValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(reg)

	s.SetActiveNexusCount(3)
	s.SetActiveNexusCount(7)

	if got := testutil.ToFloat64(s.activeNexusCount); got != 7 {
		t.Errorf("expected active nexus count 7, got %v", got)
	}
}

func TestObserveCompletionIterationsRecordsSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(reg)

	s.ObserveCompletionIterations(4)

	if got := testutil.CollectAndCount(s.completionIterations); got != 1 {
		t.Errorf("expected exactly 1 collected sample, got %d", got)
	}
}
