package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentAddRequiresRow(t *testing.T) {
	orig := commentRowID
	commentRowID = 0
	t.Cleanup(func() { commentRowID = orig })

	// Fails locally, before the open view or the server is touched.
	err := commentAddRun("cek lagi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--row")
}
