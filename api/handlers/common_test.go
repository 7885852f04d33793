package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/imagegate/api"
	"github.com/BaSui01/imagegate/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// =============================================================================
// 🧪 Common 函数测试
// =============================================================================

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		wantStatus int
	}{
		{
			name:       "simple object",
			data:       map[string]string{"message": "hello"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "error status",
			data:       api.ErrorResponse{Detail: "boom"},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteJSON(w, tt.wantStatus, tt.data)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestWriteError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            *types.Error
		expectedStatus int
	}{
		{
			name:           "invalid request",
			err:            types.NewError(types.ErrInvalidRequest, "Prompt is required."),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "method not allowed",
			err:            types.NewError(types.ErrMethodNotAllowed, "Method Not Allowed"),
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "payload too large",
			err:            types.NewError(types.ErrPayloadTooLarge, "too big"),
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "upstream error",
			err:            types.NewError(types.ErrUpstreamError, "invalid api key").WithProvider("openai-image"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "internal error",
			err:            types.NewError(types.ErrInternalError, "boom"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "explicit status wins",
			err:            types.NewError(types.ErrUpstreamError, "teapot").WithHTTPStatus(http.StatusTeapot),
			expectedStatus: http.StatusTeapot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, map[string]any{"detail": tt.err.Message}, resp)
		})
	}
}

func TestWriteError_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, types.NewError(types.ErrInternalError, "boom"), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestToAPIError(t *testing.T) {
	t.Run("classified error passes through", func(t *testing.T) {
		orig := types.NewError(types.ErrUpstreamError, "rate limited")
		got := ToAPIError(orig)
		assert.Same(t, orig, got)
	})

	t.Run("wrapped classified error is unwrapped", func(t *testing.T) {
		orig := types.NewError(types.ErrInvalidRequest, "bad")
		got := ToAPIError(errors.Join(errors.New("context"), orig))
		assert.Same(t, orig, got)
	})

	t.Run("unclassified error becomes internal", func(t *testing.T) {
		cause := errors.New("disk on fire")
		got := ToAPIError(cause)
		assert.Equal(t, types.ErrInternalError, got.Code)
		assert.Equal(t, "disk on fire", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestDecodeJSONBody(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"cat","size":"1024x1536"}`))

		var req api.GenerateImageRequest
		require.NoError(t, DecodeJSONBody(w, r, &req, logger))
		assert.Equal(t, "cat", req.Prompt)
		assert.Equal(t, "1024x1536", req.Size)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"cat","style":"vivid"}`))

		var req api.GenerateImageRequest
		require.NoError(t, DecodeJSONBody(w, r, &req, logger))
		assert.Equal(t, "cat", req.Prompt)
	})

	t.Run("empty body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)

		var req api.GenerateImageRequest
		assert.Error(t, DecodeJSONBody(w, r, &req, logger))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))

		var req api.GenerateImageRequest
		assert.Error(t, DecodeJSONBody(w, r, &req, logger))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid JSON body")
	})
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.True(t, RequireMethod(w, r, http.MethodPost, zap.NewNop()))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, RequireMethod(w, r, http.MethodPost, zap.NewNop()))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, w.Body.String())
}

func TestEncodeDecodeImage_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(rt, "data")

		decoded, err := DecodeImage(EncodeImage(data))
		if err != nil {
			rt.Fatalf("decode failed: %v", err)
		}
		if !bytes.Equal(data, decoded) {
			rt.Fatalf("round trip mismatch: %d bytes in, %d bytes out", len(data), len(decoded))
		}
	})
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures status code", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)

		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusInternalServerError)

		assert.Equal(t, http.StatusCreated, rw.StatusCode)
		assert.True(t, rw.Written)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("write implies 200 and counts bytes", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)

		assert.Equal(t, 5, n)
		assert.Equal(t, http.StatusOK, rw.StatusCode)
		assert.Equal(t, int64(5), rw.BytesWritten)
	})
}
