package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/groovymister/gomister/internal/health"
)

type fakePacer struct {
	dropped           uint64
	consecTimeouts    int
	consecDrops       int
}

func (f fakePacer) DroppedFrames() uint64    { return f.dropped }
func (f fakePacer) ConsecutiveTimeouts() int { return f.consecTimeouts }
func (f fakePacer) ConsecutiveDrops() int    { return f.consecDrops }

func collect(t *testing.T, c *Collector) map[string]float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)

	out := map[string]float64{}
	for m := range ch {
		var d dto.Metric
		if err := m.Write(&d); err != nil {
			t.Fatalf("Write: %v", err)
		}
		name := m.Desc().String()
		switch {
		case d.Gauge != nil:
			out[name] = d.Gauge.GetValue()
		case d.Counter != nil:
			out[name] = d.Counter.GetValue()
		}
	}
	return out
}

func TestCollect_reportsHealthAndPacerValues(t *testing.T) {
	w := health.New()
	w.Record(5, true)
	w.Record(7, true)
	w.Record(9, false)

	p := fakePacer{dropped: 42, consecTimeouts: 1, consecDrops: 2}
	c := New(w, p)

	vals := collect(t, c)
	if len(vals) != 7 {
		t.Fatalf("Collect() produced %d metrics, want 7", len(vals))
	}
}

func TestCollect_nilSourcesProduceNoMetrics(t *testing.T) {
	c := New(nil, nil)
	vals := collect(t, c)
	if len(vals) != 0 {
		t.Errorf("Collect() with nil sources produced %d metrics, want 0", len(vals))
	}
}

func TestDescribe_matchesCollectCount(t *testing.T) {
	c := New(health.New(), fakePacer{})
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)
	n := 0
	for range ch {
		n++
	}
	if n != 7 {
		t.Errorf("Describe() sent %d descs, want 7", n)
	}
}
