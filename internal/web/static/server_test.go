package static

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCore/modules/kit/errx"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(body), 0o644))
	}
	return fsys
}

func TestIsStatic(t *testing.T) {
	assert.True(t, IsStatic("/index.html"))
	assert.True(t, IsStatic("/img/LOGO.PNG"))
	assert.True(t, IsStatic("/a.b/c.css"))
	assert.False(t, IsStatic("/api/items"))
	assert.False(t, IsStatic("/api/items.exe"))
	assert.False(t, IsStatic("/"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "/etc/passwd", Sanitize("/../../etc/passwd"))
	assert.Equal(t, "/a/b.css", Sanitize("a/./b.css"))
	assert.Equal(t, "/.x.html", Sanitize("/...x.html"))
}

func TestServer_FirstRootWins(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/www/a/index.html": "from-a",
		"/www/b/index.html": "from-b",
		"/www/b/only-b.css": "body{}",
	})
	s := NewServer(fsys, nil, nil)
	s.AddRoot("/www/a")
	s.AddRoot("/www/b")

	f, err := s.Open("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "from-a", string(f.Body))
	assert.Equal(t, "text/html; charset=utf-8", f.ContentType)

	f, err = s.Open("/only-b.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(f.Body))
	assert.Equal(t, "text/css; charset=utf-8", f.ContentType)
}

func TestServer_Missing404(t *testing.T) {
	s := NewServer(memFS(t, nil), nil, nil)
	s.AddRoot("/www")

	_, err := s.Open("/nope.js")
	require.True(t, errors.Is(err, errx.ErrNotFound))
	status, ok := errx.StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_TraversalStaysInsideRoot(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/secret.txt":     "top secret",
		"/www/secret.txt": "public",
	})
	s := NewServer(fsys, nil, nil)
	s.AddRoot("/www")

	f, err := s.Open("/../secret.txt")
	require.NoError(t, err)
	assert.Equal(t, "public", string(f.Body))
}

func TestServer_DirectoryIsNotServed(t *testing.T) {
	fsys := memFS(t, map[string]string{"/www/dir.css/x": "x"})
	s := NewServer(fsys, nil, nil)
	s.AddRoot("/www")

	_, err := s.Open("/dir.css")
	assert.True(t, errors.Is(err, errx.ErrNotFound))
}

func TestServer_UnknownExtensionSniffed(t *testing.T) {
	fsys := memFS(t, map[string]string{"/www/readme": "plain words"})
	s := NewServer(fsys, nil, nil)
	s.AddRoot("/www")

	f, err := s.Open("/readme")
	require.NoError(t, err)
	assert.Contains(t, f.ContentType, "text/plain")
}

func TestServer_CacheServesUntilExpiry(t *testing.T) {
	fsys := memFS(t, map[string]string{"/www/app.js": "v1"})
	cache := NewCache(8, time.Hour, 0)
	s := NewServer(fsys, cache, nil)
	s.AddRoot("/www")

	f, err := s.Open("/app.js")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(f.Body))

	require.NoError(t, afero.WriteFile(fsys, "/www/app.js", []byte("v2"), 0o644))
	f, err = s.Open("/app.js")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(f.Body))

	cache.Purge()
	f, err = s.Open("/app.js")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(f.Body))

	st := cache.Stats()
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 2, st.Misses)
}

func TestCache_SkipsLargeFiles(t *testing.T) {
	c := NewCache(4, time.Minute, 4)
	c.Set("big", &File{Body: []byte("12345")})
	c.Set("small", &File{Body: []byte("1234")})
	assert.Equal(t, 1, c.Len())
}
