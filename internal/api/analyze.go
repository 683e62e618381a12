package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"telaah/internal/models"
)

// Analyze uploads one document for analysis and returns the result rows.
// The row shape depends on the feature.
func (c *Client) Analyze(ctx context.Context, feature models.Feature, filename string, content io.Reader) ([]models.Row, error) {
	endpoint := fmt.Sprintf("/api/%s/analyze", featurePath(feature))
	return c.analyzeMultipart(ctx, endpoint, []filePart{
		{Field: "file", Filename: filename, Content: content},
	})
}

// AnalyzeAdvanced uploads an original and a revised document for the
// two-file comparison analysis.
func (c *Client) AnalyzeAdvanced(ctx context.Context, feature models.Feature, name1 string, file1 io.Reader, name2 string, file2 io.Reader) ([]models.Row, error) {
	endpoint := fmt.Sprintf("/api/%s/analyze_advanced", featurePath(feature))
	return c.analyzeMultipart(ctx, endpoint, []filePart{
		{Field: "file1", Filename: name1, Content: file1},
		{Field: "file2", Filename: name2, Content: file2},
	})
}

func (c *Client) analyzeMultipart(ctx context.Context, endpoint string, files []filePart) ([]models.Row, error) {
	body, contentType, err := multipartBody(nil, files)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var rows []models.Row
	if err := c.send(req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Download requests a derived artifact (revised document, highlight copy,
// archive) for the uploaded file and writes it into destDir under the name
// from the Content-Disposition header. Returns the written path.
func (c *Client) Download(ctx context.Context, feature models.Feature, variant, filename string, content io.Reader, destDir string) (string, error) {
	endpoint := fmt.Sprintf("/api/%s/download", featurePath(feature))
	if variant != "" {
		endpoint += "/" + url.PathEscape(variant)
	}
	body, contentType, err := multipartBody(nil, []filePart{
		{Field: "file", Filename: filename, Content: content},
	})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	return c.downloadTo(req, destDir, "download.dat")
}

// DownloadTwo is the two-file variant used by the comparison feature.
func (c *Client) DownloadTwo(ctx context.Context, feature models.Feature, name1 string, file1 io.Reader, name2 string, file2 io.Reader, destDir string) (string, error) {
	endpoint := fmt.Sprintf("/api/%s/download", featurePath(feature))
	body, contentType, err := multipartBody(nil, []filePart{
		{Field: "file1", Filename: name1, Content: file1},
		{Field: "file2", Filename: name2, Content: file2},
	})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	return c.downloadTo(req, destDir, "download.dat")
}

// downloadTo streams a binary response to disk, naming the file from the
// response's Content-Disposition header.
func (c *Client) downloadTo(req *http.Request, destDir, fallbackName string) (string, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", apiErrorFrom(resp)
	}

	name := dispositionFilename(resp.Header.Get("Content-Disposition"), fallbackName)
	// The server controls the name; keep only its base to stay inside destDir.
	name = filepath.Base(name)
	dest := filepath.Join(destDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// featurePath maps a feature to its URL segment. Proofreading is the one
// feature whose endpoint name differs from its feature type.
func featurePath(feature models.Feature) string {
	if feature == models.FeatureProofreading {
		return "proofread"
	}
	return strings.ToLower(string(feature))
}
