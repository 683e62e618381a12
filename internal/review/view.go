// Package review holds the open result view and its workflow rules: which
// control edits are legal, what gets sampled into an action map, and which
// preconditions must pass before anything touches the network.
package review

import (
	"errors"
	"fmt"

	"telaah/internal/api"
	"telaah/internal/models"
)

// Source says where a view's rows came from. A staged view has no saved
// file behind it; a persisted view is backed by a file in a folder.
type Source string

const (
	SourceStaged    Source = "staged"
	SourcePersisted Source = "persisted"
)

// FileRef addresses one saved result file. OwnerID matters for shared
// folders, whose files live under the owner's root.
type FileRef struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	OwnerID  int    `json:"owner_id"`
}

// ControlState is the live editable state of one row. It is the single
// source of truth while the view is open; stored action maps only seed it.
type ControlState struct {
	Replace   bool `json:"replace"`
	PICUserID *int `json:"pic_user_id"`
}

// View is the currently open result table. Exactly one view is open per
// session; opening another replaces it.
type View struct {
	Feature  models.Feature       `json:"feature"`
	Filename string               `json:"filename"`
	Source   Source               `json:"source"`
	Saved    *FileRef             `json:"saved,omitempty"`
	Rows     []models.Row         `json:"rows"`
	Controls map[int]ControlState `json:"controls"`
}

// NewStagedView opens a fresh analysis result. actions, when present, seed
// the control state; rows without an entry start at defaults.
func NewStagedView(feature models.Feature, filename string, rows []models.Row, actions models.ActionMap) *View {
	v := &View{
		Feature:  feature,
		Filename: filename,
		Source:   SourceStaged,
		Rows:     rows,
	}
	v.seedControls(actions)
	return v
}

// NewPersistedView opens a saved result file. The file's stored actions are
// authoritative; nothing staged is ever merged in.
func NewPersistedView(feature models.Feature, ref FileRef, file api.ResultFile) *View {
	v := &View{
		Feature:  feature,
		Filename: ref.Filename,
		Source:   SourcePersisted,
		Saved:    &ref,
		Rows:     file.Data,
	}
	v.seedControls(file.Actions)
	return v
}

func (v *View) seedControls(actions models.ActionMap) {
	if !v.Feature.Editable() {
		return
	}
	v.Controls = make(map[int]ControlState, len(v.Rows))
	for i := range v.Rows {
		rowID := i + 1
		state := ControlState{}
		if saved, ok := actions[rowID]; ok {
			state.Replace = saved.Replace
			state.PICUserID = saved.PICUserID
		}
		v.Controls[rowID] = state
	}
}

// ErrRowOutOfRange reports a row id outside the open table.
var ErrRowOutOfRange = errors.New("row id outside the open table")

// ErrNotEditable reports a control edit on a read-only result table.
var ErrNotEditable = errors.New("this result table has no editable controls")

func (v *View) checkRow(rowID int) error {
	if !v.Feature.Editable() {
		return ErrNotEditable
	}
	if rowID < 1 || rowID > len(v.Rows) {
		return fmt.Errorf("%w: %d (table has %d rows)", ErrRowOutOfRange, rowID, len(v.Rows))
	}
	return nil
}

// SetReplace toggles the replace mark of one row.
func (v *View) SetReplace(rowID int, replace bool) error {
	if err := v.checkRow(rowID); err != nil {
		return err
	}
	state := v.Controls[rowID]
	state.Replace = replace
	v.Controls[rowID] = state
	return nil
}

// SetPIC assigns or clears (nil) the responsible user of one row.
func (v *View) SetPIC(rowID int, userID *int) error {
	if err := v.checkRow(rowID); err != nil {
		return err
	}
	state := v.Controls[rowID]
	state.PICUserID = userID
	v.Controls[rowID] = state
	return nil
}

// SampleActions reads the current control state of every row into an action
// map. An untouched table samples to one default entry per row, so a save
// of a fresh table persists explicit defaults rather than nothing. A view
// with no rows samples to an empty map.
func (v *View) SampleActions() models.ActionMap {
	actions := make(models.ActionMap, len(v.Controls))
	for rowID, state := range v.Controls {
		actions[rowID] = models.RowAction{Replace: state.Replace, PICUserID: state.PICUserID}
	}
	return actions
}

// Action samples one row's control state.
func (v *View) Action(rowID int) (models.RowAction, error) {
	if err := v.checkRow(rowID); err != nil {
		return models.RowAction{}, err
	}
	state := v.Controls[rowID]
	return models.RowAction{Replace: state.Replace, PICUserID: state.PICUserID}, nil
}
