package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"

	"github.com/mhpenta/profileinator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockVariantService is a func-field mock of VariantService.
type mockVariantService struct {
	GenerateVariantsFunc func(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error)

	calls atomic.Int64
}

func (m *mockVariantService) GenerateVariants(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error) {
	m.calls.Add(1)
	if m.GenerateVariantsFunc != nil {
		return m.GenerateVariantsFunc(ctx, image, count)
	}
	// Default: behave like offline mode.
	variants := make([]profileinator.Variant, count)
	for i := range variants {
		variants[i].Index = i
	}
	return variants, nil
}

func newTestServer(svc VariantService) *Server {
	cfg := Load()
	logger := slog.New(slog.DiscardHandler)
	return New(svc, cfg, logger)
}

// multipartUpload builds a multipart body with an image file and an optional
// num_variants field.
func multipartUpload(t *testing.T, filename, contentType string, data []byte, numVariants string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if numVariants != "" {
		require.NoError(t, writer.WriteField("num_variants", numVariants))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 100)...)
}

func TestHandleIndex(t *testing.T) {
	srv := newTestServer(&mockVariantService{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<!DOCTYPE html>")
	assert.Contains(t, string(page), "Profileinator")
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(&mockVariantService{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleGenerate_RejectsNonImage(t *testing.T) {
	svc := &mockVariantService{}
	srv := newTestServer(svc)

	body, contentType := multipartUpload(t, "test.txt", "text/plain", []byte("not an image"), "5")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "File must be an image", resp.Detail)
	assert.Zero(t, svc.calls.Load(), "validation failures must not reach the service")
}

func TestHandleGenerate_RejectsMissingFile(t *testing.T) {
	svc := &mockVariantService{}
	srv := newTestServer(svc)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("num_variants", "3"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls.Load())
}

func TestHandleGenerate_RejectsBadCount(t *testing.T) {
	tests := []struct {
		name  string
		count string
	}{
		{name: "zero", count: "0"},
		{name: "too high", count: "11"},
		{name: "not a number", count: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVariantService{}
			srv := newTestServer(svc)

			body, contentType := multipartUpload(t, "test.png", "image/png", pngBytes(), tt.count)
			req := httptest.NewRequest(http.MethodPost, "/generate/", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "num_variants must be between 1 and 10", resp.Detail)
			assert.Zero(t, svc.calls.Load())
		})
	}
}

func TestHandleGenerate_OfflinePlaceholders(t *testing.T) {
	// Offline mode: the service returns empty slots, the client still gets
	// five decodable entries and its filename back.
	srv := newTestServer(&mockVariantService{})

	body, contentType := multipartUpload(t, "test.png", "image/png", pngBytes(), "5")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Images, 5)
	for _, img := range resp.Images {
		decoded, err := base64.StdEncoding.DecodeString(img)
		require.NoError(t, err)
		assert.Equal(t, profileinator.PlaceholderToken, string(decoded))
	}
	require.NotNil(t, resp.OriginalFilename)
	assert.Equal(t, "test.png", *resp.OriginalFilename)
}

func TestHandleGenerate_DefaultCount(t *testing.T) {
	var gotCount int
	svc := &mockVariantService{
		GenerateVariantsFunc: func(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error) {
			gotCount = count
			return make([]profileinator.Variant, count), nil
		},
	}
	srv := newTestServer(svc)

	body, contentType := multipartUpload(t, "test.png", "image/png", pngBytes(), "")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profileinator.DefaultVariants, gotCount)
}

func TestHandleGenerate_MixedResults(t *testing.T) {
	svc := &mockVariantService{
		GenerateVariantsFunc: func(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error) {
			variants := make([]profileinator.Variant, count)
			variants[0] = profileinator.Variant{Data: []byte("real-image"), MIMEType: "image/png"}
			return variants, nil
		},
	}
	srv := newTestServer(svc)

	body, contentType := multipartUpload(t, "photo.jpg", "image/jpeg", pngBytes(), "3")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Images, 3)

	first, err := base64.StdEncoding.DecodeString(resp.Images[0])
	require.NoError(t, err)
	assert.Equal(t, "real-image", string(first))

	second, err := base64.StdEncoding.DecodeString(resp.Images[1])
	require.NoError(t, err)
	assert.Equal(t, profileinator.PlaceholderToken, string(second))
}

func TestHandleGenerate_ServiceError(t *testing.T) {
	svc := &mockVariantService{
		GenerateVariantsFunc: func(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error) {
			return nil, errors.New("wiring problem: secret internal detail")
		},
	}
	srv := newTestServer(svc)

	body, contentType := multipartUpload(t, "test.png", "image/png", pngBytes(), "2")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Failed to generate profiles. Please try again.", resp.Detail)
	assert.NotContains(t, resp.Detail, "secret internal detail")
}

func TestHandleGenerate_PanicRecovered(t *testing.T) {
	svc := &mockVariantService{
		GenerateVariantsFunc: func(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error) {
			panic("should not escape")
		},
	}
	srv := newTestServer(svc)

	body, contentType := multipartUpload(t, "test.png", "image/png", pngBytes(), "2")
	req := httptest.NewRequest(http.MethodPost, "/generate/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestParseVariantCount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "absent selects default", raw: "", want: profileinator.DefaultVariants, wantOK: true},
		{name: "valid", raw: "7", want: 7, wantOK: true},
		{name: "minimum", raw: "1", want: 1, wantOK: true},
		{name: "maximum", raw: "10", want: 10, wantOK: true},
		{name: "zero", raw: "0", wantOK: false},
		{name: "negative", raw: "-1", wantOK: false},
		{name: "too high", raw: "11", wantOK: false},
		{name: "garbage", raw: "many", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseVariantCount(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
