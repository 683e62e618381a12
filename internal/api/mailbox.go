package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"telaah/internal/models"
)

// GetMessages lists the inbox or sent mailbox, newest first.
func (c *Client) GetMessages(ctx context.Context, mailbox string) ([]models.Message, error) {
	var messages []models.Message
	err := c.do(ctx, http.MethodPost, "/api/get_messages", map[string]string{"type": mailbox}, &messages)
	return messages, err
}

// SendMessage sends an internal message, optionally with one attachment.
// attachmentName may be empty for no attachment.
func (c *Client) SendMessage(ctx context.Context, recipientID int, subject, body, attachmentName string, attachment io.Reader) (string, error) {
	fields := map[string]string{
		"recipient_id": fmt.Sprintf("%d", recipientID),
		"subject":      subject,
		"body":         body,
	}
	var files []filePart
	if attachmentName != "" && attachment != nil {
		files = append(files, filePart{Field: "attachment", Filename: attachmentName, Content: attachment})
	}
	form, contentType, err := multipartBody(fields, files)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/send_message", form)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// MarkMessageRead marks one inbox message as read.
func (c *Client) MarkMessageRead(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/mark_message_read/%d", id), nil, nil)
}

// DeleteMessage deletes a sent message (sender-only on the server side).
func (c *Client) DeleteMessage(ctx context.Context, id int) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/delete_message/%d", id), nil, &resp)
	return resp.Message, err
}

// GetUnreadCount returns the unread-message count for the badge poller.
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/api/get_unread_count", nil, &resp)
	return resp.Count, err
}

// DownloadAttachment saves a message attachment into destDir, named from the
// response's Content-Disposition header. Returns the written path.
func (c *Client) DownloadAttachment(ctx context.Context, id int, destDir string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/download_message_attachment/%d", id), nil)
	if err != nil {
		return "", err
	}
	return c.downloadTo(req, destDir, fmt.Sprintf("attachment_%d", id))
}
