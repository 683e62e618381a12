package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telaah/internal/api"
	"telaah/internal/models"
)

type fakeSaver struct {
	calls  int
	folder string
	rowID  int
	action models.RowAction
	msg    string
	err    error
}

func (f *fakeSaver) SaveRowAction(ctx context.Context, folder, filename string, ownerID, rowID int, action models.RowAction) (string, error) {
	f.calls++
	f.folder = folder
	f.rowID = rowID
	f.action = action
	return f.msg, f.err
}

func threeRows() []models.Row {
	return []models.Row{
		{"Kata/Frasa Salah": "a"},
		{"Kata/Frasa Salah": "b"},
		{"Kata/Frasa Salah": "c"},
	}
}

func TestSampleActionsUntouchedTableYieldsDefaults(t *testing.T) {
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", threeRows(), nil)

	actions := v.SampleActions()
	require.Len(t, actions, 3)
	for _, rowID := range []int{1, 2, 3} {
		action, ok := actions[rowID]
		require.True(t, ok)
		assert.False(t, action.Replace)
		assert.Nil(t, action.PICUserID)
	}
}

func TestSampleActionsEmptyView(t *testing.T) {
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", nil, nil)
	assert.Empty(t, v.SampleActions())
}

func TestSeedControlsFromSavedActions(t *testing.T) {
	pic := 5
	file := api.ResultFile{
		Data:    threeRows(),
		Actions: models.ActionMap{2: {Replace: true, PICUserID: &pic}},
	}
	v := NewPersistedView(models.FeatureProofreading, FileRef{Folder: "f", Filename: "x.json", OwnerID: 1}, file)

	action, err := v.Action(2)
	require.NoError(t, err)
	assert.True(t, action.Replace)
	require.NotNil(t, action.PICUserID)
	assert.Equal(t, 5, *action.PICUserID)

	action, err = v.Action(1)
	require.NoError(t, err)
	assert.False(t, action.Replace)
}

func TestSetControlsValidateRowRange(t *testing.T) {
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", threeRows(), nil)

	assert.ErrorIs(t, v.SetReplace(0, true), ErrRowOutOfRange)
	assert.ErrorIs(t, v.SetReplace(4, true), ErrRowOutOfRange)
	assert.NoError(t, v.SetReplace(3, true))
}

func TestReadOnlyFeatureRejectsEdits(t *testing.T) {
	v := NewStagedView(models.FeatureCompare, "a.pdf", []models.Row{{"diff": "x"}}, nil)
	assert.ErrorIs(t, v.SetReplace(1, true), ErrNotEditable)
	assert.Empty(t, v.SampleActions())
}

func TestFinalizeWithoutSavedFileMakesNoRequest(t *testing.T) {
	saver := &fakeSaver{}
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", threeRows(), nil)

	_, err := Finalize(context.Background(), saver, v, 1)
	assert.ErrorIs(t, err, ErrNotSaved)
	assert.Zero(t, saver.calls, "precondition failure must not reach the network")
}

func TestFinalizeReadsLiveControlState(t *testing.T) {
	file := api.ResultFile{
		Data:    threeRows(),
		Actions: models.ActionMap{2: {Replace: false}},
	}
	v := NewPersistedView(models.FeatureProofreading, FileRef{Folder: "f", Filename: "x.json", OwnerID: 9}, file)

	// Edit after open; finalize must send the edited state, not the
	// state loaded from the file.
	pic := 7
	require.NoError(t, v.SetReplace(2, true))
	require.NoError(t, v.SetPIC(2, &pic))

	saver := &fakeSaver{msg: "Row action saved"}
	msg, err := Finalize(context.Background(), saver, v, 2)
	require.NoError(t, err)
	assert.Equal(t, "Row action saved", msg)
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "f", saver.folder)
	assert.Equal(t, 2, saver.rowID)
	assert.True(t, saver.action.Replace)
	require.NotNil(t, saver.action.PICUserID)
	assert.Equal(t, 7, *saver.action.PICUserID)
}

func TestFinalizeReturnsServerErrorVerbatim(t *testing.T) {
	file := api.ResultFile{Data: threeRows()}
	v := NewPersistedView(models.FeatureProofreading, FileRef{Folder: "f", Filename: "x.json"}, file)

	saver := &fakeSaver{err: &api.APIError{StatusCode: 403, Message: "Anda bukan pemilik folder ini"}}
	_, err := Finalize(context.Background(), saver, v, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Anda bukan pemilik folder ini")
}

func TestSaveRequestPreconditions(t *testing.T) {
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", threeRows(), nil)

	_, err := SaveRequest(v, "", 1)
	assert.ErrorIs(t, err, ErrNoFolder)

	empty := NewStagedView(models.FeatureProofreading, "laporan.pdf", nil, nil)
	_, err = SaveRequest(empty, "mine", 1)
	assert.ErrorIs(t, err, ErrNothingToSave)

	unknown := NewStagedView(models.Feature("unknown"), "laporan.pdf", threeRows(), nil)
	_, err = SaveRequest(unknown, "mine", 1)
	assert.ErrorIs(t, err, ErrNoFeature)

	unnamed := NewStagedView(models.FeatureProofreading, "", threeRows(), nil)
	_, err = SaveRequest(unnamed, "mine", 1)
	assert.ErrorIs(t, err, ErrNoFilename)
}

func TestSaveRequestSamplesDefaultsForFreshTable(t *testing.T) {
	v := NewStagedView(models.FeatureProofreading, "laporan.pdf", threeRows(), nil)

	req, err := SaveRequest(v, "mine", 1)
	require.NoError(t, err)
	assert.Equal(t, "mine", req.FolderName)
	assert.Equal(t, "laporan.pdf", req.OriginalFilename)
	assert.Equal(t, models.FeatureProofreading, req.FeatureType)
	assert.Len(t, req.ResultsData, 3)
	assert.Len(t, req.ActionsData, 3, "every row gets an explicit default action")
}

func TestShareSummary(t *testing.T) {
	tests := []struct {
		name   string
		result api.ShareResult
		want   string
	}{
		{
			name:   "mixed outcome",
			result: api.ShareResult{SuccessNames: []string{"budi", "sari"}, SkippedCount: 1},
			want:   "shared with budi, sari; 1 already had access",
		},
		{
			name:   "errors appended verbatim",
			result: api.ShareResult{SuccessNames: []string{"budi"}, Errors: []string{"user tono not found"}},
			want:   "shared with budi; user tono not found",
		},
		{
			name:   "nothing to report falls back to server message",
			result: api.ShareResult{Message: "Folder shared"},
			want:   "Folder shared",
		},
		{
			name: "empty result",
			want: "nothing shared",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShareSummary(tt.result))
		})
	}
}
