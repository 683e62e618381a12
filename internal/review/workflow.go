package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telaah/internal/api"
	"telaah/internal/models"
)

// RowSaver persists the action state of one row of a saved file.
type RowSaver interface {
	SaveRowAction(ctx context.Context, folder, filename string, ownerID, rowID int, action models.RowAction) (string, error)
}

// ErrNotSaved reports a per-row finalize on a view with no file behind it.
// The row of a staged table has nowhere to go until the whole table is
// saved to a folder, so no request is sent.
var ErrNotSaved = errors.New("results are not saved to a folder yet; save them first")

// Finalize persists one row's current control state. The state is read from
// the live controls at call time, never from a previously sampled map. The
// returned message is the server's, verbatim.
func Finalize(ctx context.Context, saver RowSaver, v *View, rowID int) (string, error) {
	if v == nil || v.Saved == nil {
		return "", ErrNotSaved
	}
	action, err := v.Action(rowID)
	if err != nil {
		return "", err
	}
	return saver.SaveRowAction(ctx, v.Saved.Folder, v.Saved.Filename, v.Saved.OwnerID, rowID, action)
}

// ErrNoFolder reports a save attempt with no destination folder chosen.
var ErrNoFolder = errors.New("no destination folder selected")

// ErrNothingToSave reports a save attempt with no open result rows.
var ErrNothingToSave = errors.New("no analysis results to save")

// ErrNoFeature reports a save attempt on a view with an unknown analysis
// kind.
var ErrNoFeature = errors.New("the open results have no known analysis kind")

// ErrNoFilename reports a save attempt on a view with no source filename.
var ErrNoFilename = errors.New("the open results have no source filename")

// SaveRequest builds the first-time persistence payload for the open view,
// sampling the live controls. Preconditions fail locally, before any
// request is made.
func SaveRequest(v *View, folder string, ownerID int) (api.SaveResultsRequest, error) {
	if folder == "" {
		return api.SaveResultsRequest{}, ErrNoFolder
	}
	if v == nil || len(v.Rows) == 0 {
		return api.SaveResultsRequest{}, ErrNothingToSave
	}
	if !v.Feature.Valid() {
		return api.SaveResultsRequest{}, ErrNoFeature
	}
	if v.Filename == "" {
		return api.SaveResultsRequest{}, ErrNoFilename
	}
	return api.SaveResultsRequest{
		FolderName:       folder,
		OwnerID:          ownerID,
		FeatureType:      v.Feature,
		ResultsData:      v.Rows,
		OriginalFilename: v.Filename,
		ActionsData:      v.SampleActions(),
	}, nil
}

// ShareSummary folds a per-recipient share outcome into one line, e.g.
// "shared with budi, sari; 1 already had access". Server-reported errors
// are appended as-is.
func ShareSummary(result api.ShareResult) string {
	var parts []string
	if len(result.SuccessNames) > 0 {
		parts = append(parts, "shared with "+strings.Join(result.SuccessNames, ", "))
	}
	if result.SkippedCount == 1 {
		parts = append(parts, "1 already had access")
	} else if result.SkippedCount > 1 {
		parts = append(parts, fmt.Sprintf("%d already had access", result.SkippedCount))
	}
	for _, e := range result.Errors {
		parts = append(parts, e)
	}
	if len(parts) == 0 {
		if result.Message != "" {
			return result.Message
		}
		return "nothing shared"
	}
	return strings.Join(parts, "; ")
}
