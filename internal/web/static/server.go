// Package static 从注册的根目录读取静态资源。
//
// 根目录按注册顺序查找，第一个存在该文件的根目录胜出；都没有时返回 404。
package static

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"WebCore/modules/kit/errx"
	"WebCore/modules/kit/logx"
)

const CodeStaticRead errx.Code = "STATIC_READ_FAILED"

var (
	// ErrFileNotFound 对外文案保持与默认 not-found 一致。
	ErrFileNotFound = errx.NewHTTP(http.StatusNotFound, errx.CodeNotFound, "404 Not Found")
	ErrStaticRead   = errx.NewSys(CodeStaticRead, "Error serving static file").WithStatus(http.StatusInternalServerError)
)

type Server struct {
	fs     afero.Fs
	cache  *Cache
	logger logx.Logger

	mu    sync.RWMutex
	roots []string
}

// NewServer fsys 为空时使用真实文件系统；cache 可为空（不缓存）。
func NewServer(fsys afero.Fs, cache *Cache, logger logx.Logger) *Server {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Server{fs: fsys, cache: cache, logger: logger}
}

// AddRoot 追加根目录。
func (s *Server) AddRoot(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = append(s.roots, filepath.Clean(dir))
}

func (s *Server) Roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// Sanitize 去掉 ".." 并规整为以 "/" 开头的干净路径。
func Sanitize(p string) string {
	for strings.Contains(p, "..") {
		p = strings.ReplaceAll(p, "..", "")
	}
	return path.Clean("/" + p)
}

// Open 按根目录顺序查找并读取 urlPath 对应的文件。
func (s *Server) Open(urlPath string) (*File, error) {
	clean := Sanitize(urlPath)
	for _, root := range s.Roots() {
		full := filepath.Join(root, filepath.FromSlash(clean))

		if f, ok := s.cache.Get(full); ok {
			return f, nil
		}

		info, err := s.fs.Stat(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, ErrStaticRead.WithData("path", full).WithCause(err)
		}
		if info.IsDir() {
			continue
		}

		body, err := afero.ReadFile(s.fs, full)
		if err != nil {
			return nil, ErrStaticRead.WithData("path", full).WithCause(err)
		}
		f := &File{
			Name:        full,
			ContentType: s.contentType(clean, body),
			Body:        body,
			ModTime:     info.ModTime(),
		}
		s.cache.Set(full, f)
		s.logger.Debug("static file loaded",
			zap.String("path", full),
			zap.Int("bytes", len(body)),
			zap.String("content_type", f.ContentType),
		)
		return f, nil
	}
	return nil, ErrFileNotFound.WithData("path", clean)
}

func (s *Server) contentType(p string, body []byte) string {
	if ct := MimeByExt(Ext(p)); ct != "" {
		return withCharset(ct)
	}
	return mimetype.Detect(body).String()
}
