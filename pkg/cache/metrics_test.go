package cache

import (
	"testing"
)

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if CacheHitsTotal == nil {
		t.Error("CacheHitsTotal not registered")
	}

	if CacheMissesTotal == nil {
		t.Error("CacheMissesTotal not registered")
	}

	if CacheSetsTotal == nil {
		t.Error("CacheSetsTotal not registered")
	}

	if CacheDeletesTotal == nil {
		t.Error("CacheDeletesTotal not registered")
	}

	if CacheFallbacksTotal == nil {
		t.Error("CacheFallbacksTotal not registered")
	}

	if CacheTier1Healthy == nil {
		t.Error("CacheTier1Healthy not registered")
	}

	if CacheOperationDuration == nil {
		t.Error("CacheOperationDuration not registered")
	}
}
