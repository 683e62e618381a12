package api

import (
	"context"
	"fmt"
	"net/http"

	"telaah/internal/models"
)

// GetAnalysisLogs returns the current user's analysis logs and manual tasks,
// newest first, statuses already computed by the server.
func (c *Client) GetAnalysisLogs(ctx context.Context) ([]models.TaskLog, error) {
	var logs []models.TaskLog
	err := c.do(ctx, http.MethodGet, "/api/get_analysis_logs", nil, &logs)
	return logs, err
}

// LogAnalysisStart records the start of an analysis run and returns the log
// id to close it with.
func (c *Client) LogAnalysisStart(ctx context.Context, filename string, feature models.Feature) (int, error) {
	body := map[string]any{
		"filename":     filename,
		"feature_type": feature,
	}
	var resp struct {
		LogID int `json:"log_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/log_analysis_start", body, &resp)
	return resp.LogID, err
}

// LogAnalysisEnd closes an analysis log with a terminal status, "done" or
// "error".
func (c *Client) LogAnalysisEnd(ctx context.Context, logID int, status models.TaskStatus) error {
	body := map[string]any{
		"log_id": logID,
		"status": status,
	}
	return c.do(ctx, http.MethodPost, "/api/log_analysis_end", body, nil)
}

// AddManualTask creates a tracker entry not tied to an analysis run.
func (c *Client) AddManualTask(ctx context.Context, fields models.TaskFields) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/add_manual_task", fields, &resp)
	return resp.Message, err
}

// EditTask updates an existing tracker entry; the server recomputes status.
func (c *Client) EditTask(ctx context.Context, id int, fields models.TaskFields) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/edit_task/%d", id), fields, &resp)
	return resp.Message, err
}

// DeleteTask removes a tracker entry.
func (c *Client) DeleteTask(ctx context.Context, id int) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/delete_task/%d", id), nil, &resp)
	return resp.Message, err
}
