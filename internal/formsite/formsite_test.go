// internal/formsite/formsite_test.go
package formsite

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func serve(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(zaptest.NewLogger(t)).ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHandler_Form(t *testing.T) {
	rec := serve(t, http.MethodGet, FormPath)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	for _, id := range []string{
		`id="firstName"`, `id="lastName"`, `id="userEmail"`, `id="userNumber"`,
		`id="uploadPicture"`, `id="currentAddress"`, `id="submit"`, `id="example-modal-sizes-title-lg"`,
	} {
		assert.Contains(t, body, id)
	}
	assert.Contains(t, body, ">Male</label>")
	assert.Contains(t, body, "novalidate")
}

func TestHandler_RootRedirects(t *testing.T) {
	rec := serve(t, http.MethodGet, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, FormPath, rec.Header().Get("Location"))
}

func TestHandler_SamplePicture(t *testing.T) {
	rec := serve(t, http.MethodGet, SamplePicturePath)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestHandler_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, http.MethodGet, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, http.MethodPost, FormPath).Code)
	assert.Equal(t, http.StatusNoContent, serve(t, http.MethodGet, "/healthz").Code)
}

func TestSamplePicture_ReturnsCopy(t *testing.T) {
	a := SamplePicture()
	a[0] = 0
	assert.Equal(t, byte(0x89), SamplePicture()[0])
}

func TestStart(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)

	srv, err := Start("127.0.0.1:0", zaptest.NewLogger(t))
	require.NoError(t, err)

	resp, err := http.Get(srv.FormURL())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasSuffix(srv.FormURL(), FormPath))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	http.DefaultClient.CloseIdleConnections()

	_, open := <-srv.Err()
	assert.False(t, open)
}

func TestStart_AddressInUse(t *testing.T) {
	first, err := Start("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	_, err = Start(strings.TrimPrefix(first.BaseURL(), "http://"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
