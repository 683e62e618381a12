package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"telaah/internal/models"
)

// ListFolders returns the folders visible to the current user, owned and
// shared alike.
func (c *Client) ListFolders(ctx context.Context) ([]models.Folder, error) {
	var folders []models.Folder
	err := c.do(ctx, http.MethodGet, "/api/list_folders", nil, &folders)
	return folders, err
}

// ResolveOwner returns the owner user id of a folder visible to the
// current user. Persistence endpoints resolve the storage root from the
// owner id and reject a zero one, so even the user's own folders need their
// real id on the wire; the folder listing is the only place the client can
// learn it.
func (c *Client) ResolveOwner(ctx context.Context, folder string) (int, error) {
	folders, err := c.ListFolders(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range folders {
		if f.Name == folder {
			return f.OwnerID, nil
		}
	}
	return 0, fmt.Errorf("folder %q not found", folder)
}

// CreateFolder creates a folder and returns the server-normalized name.
func (c *Client) CreateFolder(ctx context.Context, name string) (string, error) {
	var resp struct {
		FolderName string `json:"folder_name"`
	}
	err := c.do(ctx, http.MethodPost, "/api/create_folder", map[string]string{"name": name}, &resp)
	return resp.FolderName, err
}

// DeleteFolder removes an owned folder and everything stored in it.
func (c *Client) DeleteFolder(ctx context.Context, name string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/delete_folder", map[string]string{"folder_name": name}, &resp)
	return resp.Message, err
}

// ShareResult is the per-recipient outcome of a share request. Skips (users
// already shared with) are not failures.
type ShareResult struct {
	Message      string   `json:"message"`
	SuccessNames []string `json:"success_names"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}

// ShareFolder shares an owned folder with the given users.
func (c *Client) ShareFolder(ctx context.Context, folder string, userIDs []int) (ShareResult, error) {
	body := map[string]any{
		"folder_name":         folder,
		"share_with_user_ids": userIDs,
	}
	var resp ShareResult
	err := c.do(ctx, http.MethodPost, "/api/share_folder", body, &resp)
	return resp, err
}

// FolderHistory lists the saved result files in one folder. The owner id
// addresses shared folders, whose files live under the owner's root.
func (c *Client) FolderHistory(ctx context.Context, ownerID int, folder string) ([]models.HistoryEntry, error) {
	endpoint := fmt.Sprintf("/api/folder_history/%d/%s", ownerID, url.PathEscape(folder))
	var entries []models.HistoryEntry
	err := c.do(ctx, http.MethodGet, endpoint, nil, &entries)
	return entries, err
}

// SaveResultsRequest is the payload for first-time persistence of a fresh
// analysis, including whatever action map the client holds at save time.
type SaveResultsRequest struct {
	FolderName       string           `json:"folder_name"`
	OwnerID          int              `json:"owner_id"`
	FeatureType      models.Feature   `json:"feature_type"`
	ResultsData      []models.Row     `json:"results_data"`
	OriginalFilename string           `json:"original_filename"`
	ActionsData      models.ActionMap `json:"actions_data"`
}

// SaveResults persists a result set as a new file in the destination folder.
func (c *Client) SaveResults(ctx context.Context, req SaveResultsRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/save_results", req, &resp)
	return resp.Message, err
}

// ResultFile is a persisted result set together with its saved row actions.
// The actions here are authoritative; the staging buffer never applies to a
// persisted view.
type ResultFile struct {
	Data    []models.Row     `json:"data"`
	Actions models.ActionMap `json:"actions"`
}

// GetResultFile fetches a previously saved result file and its actions.
func (c *Client) GetResultFile(ctx context.Context, folder, filename string, ownerID int) (ResultFile, error) {
	body := map[string]any{
		"folder_name": folder,
		"filename":    filename,
		"owner_id":    ownerID,
	}
	var resp ResultFile
	err := c.do(ctx, http.MethodPost, "/api/get_result_file", body, &resp)
	return resp, err
}

// SaveRowAction persists the action state of exactly one row.
func (c *Client) SaveRowAction(ctx context.Context, folder, filename string, ownerID, rowID int, action models.RowAction) (string, error) {
	body := map[string]any{
		"folder_name": folder,
		"filename":    filename,
		"owner_id":    ownerID,
		"row_id":      rowID,
		"is_ganti":    action.Replace,
		"pic_user_id": action.PICUserID,
	}
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/save_row_action", body, &resp)
	return resp.Message, err
}

// DeleteResult removes one saved result file from an owned folder.
func (c *Client) DeleteResult(ctx context.Context, folder, filename string, ownerID int) (string, error) {
	body := map[string]any{
		"folder_name": folder,
		"filename":    filename,
		"owner_id":    ownerID,
	}
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/delete_result", body, &resp)
	return resp.Message, err
}

// GetComments returns the threaded comments attached to a saved file.
func (c *Client) GetComments(ctx context.Context, folder, filename string) ([]models.Comment, error) {
	body := map[string]string{
		"folder_name": folder,
		"filename":    filename,
	}
	var comments []models.Comment
	err := c.do(ctx, http.MethodPost, "/api/get_comments", body, &comments)
	return comments, err
}

// AddComment attaches a comment to a saved file. rowID anchors it to a table
// row; parentID makes it a reply. The endpoint predates the /api prefix and
// uses camelCase keys, both preserved here.
func (c *Client) AddComment(ctx context.Context, folder, filename string, rowID int, text string, parentID *int) (string, error) {
	body := map[string]any{
		"folderName": folder,
		"fileName":   filename,
		"rowId":      rowID,
		"text":       text,
		"parentId":   parentID,
	}
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/add_comment", body, &resp)
	return resp.Message, err
}

// GetAllUsers returns the full user directory for assignee dropdowns,
// sharing, and mail recipients.
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/get_all_users", nil, &users)
	return users, err
}
