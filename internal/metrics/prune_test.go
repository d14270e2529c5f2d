package metrics

import (
	"testing"
	"time"
)

func TestRegistry_Prune(t *testing.T) {
	reg, ts := setupRegistryWithData(t)

	// Just after ts3, anything older than 90s goes (ts1 only)
	removed := reg.Prune(ts["ts3"].Add(30*time.Second), 90*time.Second)
	if removed != 1 {
		t.Fatalf("expected 1 slice removed, got %d", removed)
	}

	results := reg.Search("", nil, time.Time{}, time.Time{})
	if len(results) == 0 {
		t.Fatalf("expected metrics after prune, got none")
	}
	for _, m := range results {
		if m.Timestamp.Before(ts["ts2"]) {
			t.Fatalf("unexpected old metric timestamp: %v", m.Timestamp)
		}
	}
}
