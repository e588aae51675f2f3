package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/handler"
	"github.com/pkordes/granblue-checker/internal/service"
)

// bulkForm builds the multipart body the admin UI sends.
func bulkForm(t *testing.T, itemType, sheet string, images map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", itemType))
	fw, err := mw.CreateFormFile("csv", "items.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, sheet)
	require.NoError(t, err)
	for name, data := range images {
		fw, err := mw.CreateFormFile("images[]", name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestBulkUpload_reportsPerRowFailures(t *testing.T) {
	svc := &mockBulkUploader{
		upload: func(_ context.Context, ty domain.ItemType, sheet io.Reader, images map[string][]byte) (service.BulkResult, error) {
			assert.Equal(t, domain.ItemTypeCharacter, ty)
			b, err := io.ReadAll(sheet)
			require.NoError(t, err)
			assert.Contains(t, string(b), "Beatrix")
			assert.Contains(t, images, "katalina.png")
			assert.Contains(t, images, "vira.png")
			return service.BulkResult{
				Total:     3,
				Processed: 2,
				Failed:    1,
				Errors:    []service.BulkError{{Row: 3, Name: "Beatrix", Reason: `image "beatrix.png" was not uploaded`}},
			}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Bulk: svc})

	sheet := "name,image,implemented_at\nKatalina,katalina.png,2014-03-10\nBeatrix,beatrix.png,2016-05-01\nVira,vira.png,2015-01-01\n"
	body, contentType := bulkForm(t, "character", sheet, map[string]string{
		"katalina.png":     "a",
		"uploads/vira.png": "b",
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/items/bulk", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Total     int `json:"total"`
		Processed int `json:"processed"`
		Failed    int `json:"failed"`
		Errors    []struct {
			Row    int    `json:"row"`
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Beatrix", res.Errors[0].Name)
	assert.Equal(t, 3, res.Errors[0].Row)
}

func TestBulkUpload_missingSheet_returns422(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", "weapon"))
	require.NoError(t, mw.Close())

	h := newHTTPHandler(handler.Services{Bulk: &mockBulkUploader{}})
	req := httptest.NewRequest(http.MethodPost, "/admin/items/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "csv file is required", decodeError(t, rec).Error.Message)
}

func TestBulkUpload_notMultipart_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Services{Bulk: &mockBulkUploader{}})

	rec := do(h, http.MethodPost, "/admin/items/bulk", bytes.NewBufferString(`{}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
