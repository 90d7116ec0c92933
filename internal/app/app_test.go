package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOriginPattern(t *testing.T) {
	allowed := originAllowed([]string{"portal.example.org", "*.clinic.com", "localhost:*"})

	assert.True(t, allowed("https://portal.example.org"))
	assert.True(t, allowed("https://app.clinic.com"))
	assert.True(t, allowed("http://localhost:9002"))
	assert.False(t, allowed("https://evil.example.org"))
	assert.False(t, allowed("https://clinic.com.evil.io"))
}

func TestLoadLocation(t *testing.T) {
	loc, err := loadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	loc, err = loadLocation("-05:00")
	require.NoError(t, err)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*3600, offset)

	loc, err = loadLocation("+07:00")
	require.NoError(t, err)
	_, offset = time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*3600, offset)

	_, err = loadLocation("Mars/Olympus")
	assert.Error(t, err)
}
