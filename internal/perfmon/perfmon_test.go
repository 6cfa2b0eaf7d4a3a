package perfmon

import (
	"testing"
	"time"
)

func TestAverageLatency(t *testing.T) {
	m := NewMonitor(nil)

	if _, ok := m.AverageLatency("openlibrary"); ok {
		t.Error("no observations yet, ok must be false")
	}

	m.Observe("openlibrary", "title", 100*time.Millisecond, true)
	m.Observe("openlibrary", "isbn", 300*time.Millisecond, true)
	m.Observe("openlibrary", "title", 200*time.Millisecond, false)

	avg, ok := m.AverageLatency("openlibrary")
	if !ok {
		t.Fatal("expected observations")
	}
	if avg != 200*time.Millisecond {
		t.Errorf("AverageLatency = %v, want 200ms", avg)
	}

	if _, ok := m.AverageLatency("googlebooks"); ok {
		t.Error("other providers must stay unobserved")
	}
}

func TestAverageDurationByOperation(t *testing.T) {
	m := NewMonitor(nil)
	m.Observe("openlibrary", "title", 100*time.Millisecond, true)
	m.Observe("openlibrary", "title", 300*time.Millisecond, true)
	m.Observe("openlibrary", "isbn", 50*time.Millisecond, true)

	byOp := m.AverageDurationByOperation("openlibrary")
	if byOp["title"] != 200*time.Millisecond {
		t.Errorf("title average = %v, want 200ms", byOp["title"])
	}
	if byOp["isbn"] != 50*time.Millisecond {
		t.Errorf("isbn average = %v, want 50ms", byOp["isbn"])
	}
}

func TestObserveConcurrent(t *testing.T) {
	m := NewMonitor(nil)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				m.Observe("openlibrary", "title", time.Millisecond, true)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	avg, ok := m.AverageLatency("openlibrary")
	if !ok || avg != time.Millisecond {
		t.Errorf("AverageLatency = %v, %v; want 1ms, true", avg, ok)
	}
}
