package profiler

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickReportsAtInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(WithInterval(time.Second), WithLogger(zap.New(core)))

	clock := p.lastTime
	p.now = func() time.Time { return clock }

	for range 29 {
		clock = clock.Add(time.Second / 60)
		if p.Tick() {
			t.Fatal("reported before the interval elapsed")
		}
	}
	clock = p.lastTime.Add(time.Second)
	if !p.Tick() {
		t.Fatal("did not report after the interval")
	}

	if got := p.Last().FPS; got != 30 {
		t.Fatalf("fps = %g, want 30", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["component"] != "profiler" {
		t.Fatalf("component field = %v", entry.ContextMap()["component"])
	}
}

func TestIntervalOption(t *testing.T) {
	p := NewProfiler(WithInterval(-time.Second))
	if p.updateInterval != time.Second {
		t.Fatalf("interval = %v, want default", p.updateInterval)
	}
}
