package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telaah/internal/models"
)

// resetTaskFlags clears the task edit flag variables and restores them
// after the test.
func resetTaskFlags(t *testing.T) {
	t.Helper()
	origName, origFeature := taskName, taskFeature
	origStart, origDeadline, origEnd := taskStart, taskDeadline, taskEnd
	taskName, taskFeature, taskStart, taskDeadline, taskEnd = "", "", "", "", ""
	t.Cleanup(func() {
		taskName, taskFeature = origName, origFeature
		taskStart, taskDeadline, taskEnd = origStart, origDeadline, origEnd
	})
}

func TestEditedTaskFieldsKeepsCurrentValues(t *testing.T) {
	resetTaskFlags(t)
	end := "05 Mar 2026, 17:00"
	current := models.TaskLog{
		ID:          5,
		Filename:    "laporan.pdf",
		FeatureType: models.FeatureProofreading,
		StartTime:   "01 Mar 2026, 09:00",
		Deadline:    "04 Mar 2026, 12:00",
		EndTime:     &end,
	}

	// The edit endpoint clears whatever the payload omits, so an edit with
	// no flags set must resend every current value unchanged.
	fields, err := editedTaskFields(current)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFields{
		Filename:    "laporan.pdf",
		FeatureType: models.FeatureProofreading,
		StartTime:   "01 Mar 2026, 09:00",
		Deadline:    "04 Mar 2026, 12:00",
		EndTime:     end,
	}, fields)
}

func TestEditedTaskFieldsAppliesOnlySetFlags(t *testing.T) {
	resetTaskFlags(t)
	taskDeadline = "10 Mar 2026, 12:00"

	current := models.TaskLog{
		ID:          5,
		Filename:    "laporan.pdf",
		FeatureType: models.FeatureRestructure,
		StartTime:   "01 Mar 2026, 09:00",
		Deadline:    "04 Mar 2026, 12:00",
	}

	fields, err := editedTaskFields(current)
	require.NoError(t, err)
	assert.Equal(t, "laporan.pdf", fields.Filename)
	assert.Equal(t, models.FeatureRestructure, fields.FeatureType)
	assert.Equal(t, "10 Mar 2026, 12:00", fields.Deadline)
	assert.Equal(t, "01 Mar 2026, 09:00", fields.StartTime)
}

func TestEditedTaskFieldsRejectsUnknownFeature(t *testing.T) {
	resetTaskFlags(t)
	taskFeature = "terjemahan"

	_, err := editedTaskFields(models.TaskLog{ID: 5, Filename: "laporan.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terjemahan")
}
