package incidents

import (
	"testing"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleIncidents())

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.High)
	assert.Equal(t, 2, s.BySeverity[domain.SeverityMedium])
	assert.Equal(t, 1, s.BySeverity[domain.SeverityLow])
	require.NotNil(t, s.LastReportedAt)
	assert.True(t, s.LastReportedAt.Equal(at("2025-04-10T16:45:00Z")))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.High)
	assert.Nil(t, s.LastReportedAt)
	assert.Len(t, s.BySeverity, 3)
}
