package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheMetadata_IsValidAt(t *testing.T) {
	fetched := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	m := &CacheMetadata{EventID: "E1", FetchedAt: fetched, ExpiresAt: fetched.Add(36 * time.Hour)}

	assert.True(t, m.IsValidAt(fetched))
	assert.True(t, m.IsValidAt(fetched.Add(35*time.Hour)))
	assert.False(t, m.IsValidAt(fetched.Add(36*time.Hour)), "expiry instant itself is stale")
	assert.False(t, m.IsValidAt(fetched.Add(48*time.Hour)))
}
