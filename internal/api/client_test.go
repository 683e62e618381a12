package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telaah/internal/models"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL)
	return c, srv
}

func TestAnalyzeUploadsMultipartAndParsesRows(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/proofread/analyze", r.URL.Path)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "file", part.FormName())
		assert.Equal(t, "laporan.pdf", part.FileName())
		content, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(content))

		json.NewEncoder(w).Encode([]models.Row{
			{"Kata/Frasa Salah": "kemaren", "Pada Kalimat": "pergi kemaren"},
		})
	}))
	defer srv.Close()

	rows, err := c.Analyze(context.Background(), models.FeatureProofreading, "laporan.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kemaren", rows[0].String("Kata/Frasa Salah"))
}

func TestAPIErrorCarriesServerMessageVerbatim(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "Anda bukan pemilik folder ini"})
	}))
	defer srv.Close()

	_, err := c.ListFolders(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Anda bukan pemilik folder ini", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestAPIErrorFallsBackToRawBody(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer srv.Close()

	_, err := c.ListFolders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Contains(t, err.Error(), "502")
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429 status", &APIError{StatusCode: 429, Message: "Too Many Requests"}, true},
		{"quota in text", &APIError{StatusCode: 500, Message: "model quota exhausted"}, true},
		{"429 in text", errors.New("upstream returned 429"), true},
		{"unrelated", &APIError{StatusCode: 500, Message: "internal error"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuotaError(tt.err))
		})
	}
}

func TestBearerTokenHeader(t *testing.T) {
	var got string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Folder{})
	}))
	defer srv.Close()

	c.Token = "sekrit"
	_, err := c.ListFolders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sekrit", got)
}

func TestResolveOwnerUsesFolderListing(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/list_folders", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Folder{
			{Name: "skripsi", IsOwner: true, OwnerID: 7},
			{Name: "laporan-tim", IsOwner: false, OwnerID: 12, OwnerName: "budi"},
		})
	}))
	defer srv.Close()

	// Own folders carry the user's own id; the server rejects a zero owner
	// id, so the listing is the source even for them.
	ownerID, err := c.ResolveOwner(context.Background(), "skripsi")
	require.NoError(t, err)
	assert.Equal(t, 7, ownerID)

	ownerID, err = c.ResolveOwner(context.Background(), "laporan-tim")
	require.NoError(t, err)
	assert.Equal(t, 12, ownerID)

	_, err = c.ResolveOwner(context.Background(), "tidak-ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tidak-ada")
}

func TestSaveThenOpenRoundTrip(t *testing.T) {
	// A minimal stateful stub: save_results stores the payload,
	// get_result_file serves it back.
	var saved SaveResultsRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/save_results", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
		json.NewEncoder(w).Encode(map[string]string{"message": "Hasil disimpan"})
	})
	mux.HandleFunc("/api/get_result_file", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ResultFile{Data: saved.ResultsData, Actions: saved.ActionsData})
	})
	c, srv := newTestClient(mux)
	defer srv.Close()

	pic := 3
	req := SaveResultsRequest{
		FolderName:       "skripsi",
		OwnerID:          1,
		FeatureType:      models.FeatureProofreading,
		ResultsData:      []models.Row{{"Kata/Frasa Salah": "kemaren"}},
		OriginalFilename: "laporan.pdf",
		ActionsData: models.ActionMap{
			1: {Replace: true, PICUserID: &pic},
		},
	}
	msg, err := c.SaveResults(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Hasil disimpan", msg)

	file, err := c.GetResultFile(context.Background(), "skripsi", "laporan.json", 1)
	require.NoError(t, err)
	assert.Equal(t, req.ResultsData, file.Data)
	require.Contains(t, file.Actions, 1)
	assert.True(t, file.Actions[1].Replace)
	require.NotNil(t, file.Actions[1].PICUserID)
	assert.Equal(t, 3, *file.Actions[1].PICUserID)
}

func TestGetCommentsDecodesBareIsoformatTimestamps(t *testing.T) {
	// Comment timestamps arrive as Python datetime.isoformat() strings,
	// which carry no zone offset and so are not RFC 3339.
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_comments", r.URL.Path)
		io.WriteString(w, `[{"id":1,"row_id":2,"username":"sari","text":"cek lagi",
			"timestamp":"2026-08-31T10:00:00.123456",
			"replies":[{"id":2,"row_id":2,"username":"budi","text":"sudah","timestamp":"2026-08-31T11:30:00","replies":[]}]}]`)
	}))
	defer srv.Close()

	comments, err := c.GetComments(context.Background(), "skripsi", "hasil.json")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "2026-08-31T10:00:00.123456", comments[0].Timestamp)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "budi", comments[0].Replies[0].Username)
}

func TestActionMapWireFormatUsesStringKeys(t *testing.T) {
	var rawActions json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("/api/save_results", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ActionsData json.RawMessage `json:"actions_data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rawActions = body.ActionsData
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	c, srv := newTestClient(mux)
	defer srv.Close()

	_, err := c.SaveResults(context.Background(), SaveResultsRequest{
		FolderName:  "f",
		FeatureType: models.FeatureProofreading,
		ResultsData: []models.Row{{"x": "1"}},
		ActionsData: models.ActionMap{2: {Replace: true}},
	})
	require.NoError(t, err)

	var decoded map[string]models.RowAction
	require.NoError(t, json.Unmarshal(rawActions, &decoded))
	require.Contains(t, decoded, "2")
	assert.True(t, decoded["2"].Replace)
}

func TestDownloadUsesDispositionNameInsideDestDir(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/proofread/download/revised", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="../../hasil_revisi.docx"`)
		io.WriteString(w, "docx bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest, err := c.Download(context.Background(), models.FeatureProofreading, "revised", "laporan.pdf", strings.NewReader("x"), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "hasil_revisi.docx"), dest)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "docx bytes", string(content))
}

func TestDispositionFilename(t *testing.T) {
	assert.Equal(t, "a.docx", dispositionFilename(`attachment; filename="a.docx"`, "fb"))
	assert.Equal(t, "fb", dispositionFilename("", "fb"))
	assert.Equal(t, "fb", dispositionFilename("not a header;;;=", "fb"))
}

func TestUnreadCount(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_unread_count", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]int{"count": 4})
	}))
	defer srv.Close()

	n, err := c.GetUnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
