package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"WebCore/internal/shared/transport"
	"WebCore/internal/web/pathmatch"
)

// Binding 是路径匹配得到的一个 (name, value)。
type Binding = pathmatch.Binding

// Params 是有序的绑定集合；按名字查找时取第一个。
type Params []Binding

// Get 返回第一个同名绑定。
func (p Params) Get(name string) (string, bool) {
	for _, b := range p {
		if b.Name == name {
			return b.Value, true
		}
	}
	return "", false
}

// QueryParam 是查询串中的一个 (key, value)，保留原始顺序与重复 key。
type QueryParam struct {
	Key   string
	Value string
}

// Request 是 handler 看到的请求能力接口，由每种传输绑定各实现一次。
type Request interface {
	Context() context.Context
	Method() string
	// URI 为原始 target（含 query）。
	URI() string
	// Path 为去掉 query 的路径。
	Path() string
	Version() string
	Query() []QueryParam
	QueryValue(key string) (string, bool)
	Header(name string) []string
	Headers() map[string][]string
	ContentType() string
	Cookies() []*http.Cookie
	Cookie(name string) (string, bool)
	Authorization() string
	Body() []byte
	Params() Params
	Param(name string) string
	Lookup(name string) (string, bool)

	// setParams 只允许本包（Route 命中时）写入绑定。
	setParams(p Params)
}

type request struct {
	ctx  context.Context
	raw  transport.RawRequest
	path string

	queryOnce sync.Once
	query     []QueryParam

	params Params
}

// NewRequest 包装传输层请求，所有权随之转移。ctx 为请求级 context（携带 trace/access log）。
func NewRequest(ctx context.Context, raw transport.RawRequest) Request {
	if ctx == nil {
		ctx = raw.Context()
	}
	return &request{
		ctx:  ctx,
		raw:  raw,
		path: pathOf(raw.URI()),
	}
}

func pathOf(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	// absolute-form: "http://host/path"
	if !strings.HasPrefix(uri, "/") {
		if u, err := url.Parse(uri); err == nil && u.Host != "" {
			uri = u.EscapedPath()
		}
	}
	if uri == "" {
		return "/"
	}
	return uri
}

func (r *request) Context() context.Context { return r.ctx }
func (r *request) Method() string           { return r.raw.Method() }
func (r *request) URI() string              { return r.raw.URI() }
func (r *request) Path() string             { return r.path }
func (r *request) Version() string          { return r.raw.Version() }
func (r *request) Body() []byte             { return r.raw.Body() }
func (r *request) Params() Params           { return r.params }
func (r *request) setParams(p Params)       { r.params = p }

func (r *request) Param(name string) string {
	v, _ := r.params.Get(name)
	return v
}

func (r *request) Lookup(name string) (string, bool) {
	return r.params.Get(name)
}

func (r *request) Header(name string) []string {
	return r.raw.Header(name)
}

func (r *request) Headers() map[string][]string {
	return r.raw.Headers()
}

func (r *request) ContentType() string {
	if v := r.raw.Header("Content-Type"); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (r *request) Authorization() string {
	if v := r.raw.Header("Authorization"); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (r *request) Cookies() []*http.Cookie {
	lines := r.raw.Header("Cookie")
	if len(lines) == 0 {
		return nil
	}
	var out []*http.Cookie
	for _, line := range lines {
		cs, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		out = append(out, cs...)
	}
	return out
}

func (r *request) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (r *request) Query() []QueryParam {
	r.queryOnce.Do(func() {
		r.query = parseQuery(r.raw.URI())
	})
	return r.query
}

func (r *request) QueryValue(key string) (string, bool) {
	for _, q := range r.Query() {
		if q.Key == key {
			return q.Value, true
		}
	}
	return "", false
}

// parseQuery 保留参数顺序；url.ParseQuery 返回 map 会丢失顺序。
func parseQuery(uri string) []QueryParam {
	i := strings.IndexByte(uri, '?')
	if i < 0 {
		return nil
	}
	raw := uri[i+1:]
	if j := strings.IndexByte(raw, '#'); j >= 0 {
		raw = raw[:j]
	}
	var out []QueryParam
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if dk, err := url.QueryUnescape(k); err == nil {
			k = dk
		}
		if dv, err := url.QueryUnescape(v); err == nil {
			v = dv
		}
		out = append(out, QueryParam{Key: k, Value: v})
	}
	return out
}
