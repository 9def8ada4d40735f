package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice-coach-be/internal/dto"
	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/internal/pkg/serverutils"
	"voice-coach-be/internal/repository/memory"
	"voice-coach-be/internal/service"
	"voice-coach-be/pkg/document"
	"voice-coach-be/pkg/signal"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRooms map[string]bool

func (r staticRooms) HasSession(id string) bool { return r[id] }
func (r staticRooms) ActiveSessions() int        { return len(r) }

func newDocumentApp(t *testing.T) (*fiber.App, *signal.MemorySignal) {
	t.Helper()
	bus := signal.NewMemorySignal()
	t.Cleanup(func() { _ = bus.Close() })

	repo := memory.NewDocumentRepository()
	svc := service.NewDocumentService(document.NewTextExtractor(), repo, bus, logger.NewNopLogger())

	app := fiber.New(fiber.Config{
		BodyLimit:    2 * int(document.MaxFileSize),
		ErrorHandler: serverutils.ErrorHandlerMiddleware,
	})
	NewDocumentController(svc).RegisterRoutes(app)
	NewHealthController(staticRooms{"room-1": true}, svc).RegisterRoutes(app)
	return app, bus
}

func multipartUpload(t *testing.T, path, field, room, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if room != "" {
		require.NoError(t, w.WriteField("room_id", room))
	}
	if filename != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestDocumentController_UploadThenServeContext(t *testing.T) {
	app, bus := newDocumentApp(t)

	resp, err := app.Test(multipartUpload(t, "/upload-document", "file", "room-1", "resume.txt", "Jane Doe\nGo engineer"), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	uploaded := decode[serverutils.BaseResponse[dto.UploadDocumentResponse]](t, resp)
	assert.Equal(t, "room-1", uploaded.Data.RoomId)
	assert.Equal(t, "resume.txt", uploaded.Data.Metadata.Filename)
	assert.Contains(t, uploaded.Data.Preview, "Jane Doe")

	pending, err := bus.Pending(context.Background(), "room-1")
	require.NoError(t, err)
	assert.True(t, pending, "upload must signal the session")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/get-pdf-context/room-1", nil), -1)
	require.NoError(t, err)
	ctxResp := decode[document.ContextResponse](t, resp)
	assert.True(t, ctxResp.HasContext)
	assert.Equal(t, "Jane Doe\nGo engineer", ctxResp.Context)
}

func TestDocumentController_ContextServedToHTTPSource(t *testing.T) {
	app, _ := newDocumentApp(t)

	resp, err := app.Test(multipartUpload(t, "/upload-pdf", "pdf_file", "room-9", "notes.txt", "hello"), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	src := document.NewHTTPSource("upload", srv.URL, srv.Client())
	doc, err := src.Lookup(context.Background(), "room-9")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "hello", doc.Text)

	doc, err = src.Lookup(context.Background(), "room-unknown")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDocumentController_UploadPDF(t *testing.T) {
	app, bus := newDocumentApp(t)

	fixture, err := os.ReadFile(filepath.Join("testdata", "resume.pdf"))
	require.NoError(t, err)

	resp, err := app.Test(multipartUpload(t, "/upload-pdf", "pdf_file", "room-pdf", "resume.pdf", string(fixture)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	uploaded := decode[serverutils.BaseResponse[dto.UploadDocumentResponse]](t, resp)
	assert.Equal(t, 2, uploaded.Data.Metadata.PageCount)
	assert.Contains(t, uploaded.Data.Preview, "Jane Doe")

	pending, err := bus.Pending(context.Background(), "room-pdf")
	require.NoError(t, err)
	assert.True(t, pending)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/get-pdf-context/room-pdf", nil), -1)
	require.NoError(t, err)
	ctxResp := decode[document.ContextResponse](t, resp)
	assert.True(t, ctxResp.HasContext)
	assert.Contains(t, ctxResp.Context, "roadmapping")
}

func TestDocumentController_UploadErrors(t *testing.T) {
	app, _ := newDocumentApp(t)

	cases := []struct {
		name     string
		room     string
		filename string
		content  string
		status   int
	}{
		{"missing room", "", "a.txt", "text", fiber.StatusBadRequest},
		{"missing file", "room-1", "", "", fiber.StatusBadRequest},
		{"corrupt pdf", "room-1", "cv.pdf", "%PDF-1.7 binary", fiber.StatusUnprocessableEntity},
		{"blank document", "room-1", "blank.txt", "  \n\n ", fiber.StatusUnprocessableEntity},
		{"too large", "room-1", "big.txt", strings.Repeat("a", int(document.MaxFileSize)+1), fiber.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(multipartUpload(t, "/upload-document", "file", tc.room, tc.filename, tc.content), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decode[serverutils.BaseResponse[any]](t, resp)
			assert.False(t, body.Success)
		})
	}
}

func TestDocumentController_Clear(t *testing.T) {
	app, _ := newDocumentApp(t)

	resp, err := app.Test(multipartUpload(t, "/upload-document", "file", "room-2", "a.txt", "content"), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/get-pdf-context/room-2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/get-pdf-context/room-2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/get-pdf-context/room-2", nil), -1)
	require.NoError(t, err)
	assert.False(t, decode[document.ContextResponse](t, resp).HasContext)
}

func TestHealthController(t *testing.T) {
	app, _ := newDocumentApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	health := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.ActiveSessions)
	assert.Equal(t, 0, health.StoredContexts)
}

func TestTokenController(t *testing.T) {
	issuer := serverutils.NewJoinTokenIssuer("devkey", "secret", time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware})
	NewTokenController(issuer, staticRooms{}).RegisterRoutes(app)

	t.Run("explicit room", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/getToken?name=alice&room=room-x", nil), -1)
		require.NoError(t, err)
		body := decode[serverutils.BaseResponse[dto.TokenResponse]](t, resp)
		assert.Equal(t, "room-x", body.Data.Room)
		assert.Equal(t, "alice", body.Data.Identity)

		claims, err := issuer.Parse(body.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, "room-x", claims.Video.Room)
	})

	t.Run("generated room", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/getToken", nil), -1)
		require.NoError(t, err)
		body := decode[serverutils.BaseResponse[dto.TokenResponse]](t, resp)
		assert.Regexp(t, `^room-[0-9a-f]{8}$`, body.Data.Room)
		assert.Equal(t, defaultIdentity, body.Data.Identity)
	})
}
