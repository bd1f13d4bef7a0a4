package pathmatch

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
		binds   []Binding
	}{
		{name: "root", pattern: "/", path: "/", want: true},
		{name: "root vs empty", pattern: "/", path: "", want: true},
		{name: "literal identical", pattern: "/api/items", path: "/api/items", want: true},
		{name: "literal trailing slash", pattern: "/api/items", path: "/api/items/", want: true},
		{name: "literal mismatch", pattern: "/api/items", path: "/api/users", want: false},
		{name: "param", pattern: "/users/:id", path: "/users/42", want: true,
			binds: []Binding{{Name: "id", Value: "42"}}},
		{name: "param decoded", pattern: "/hello/:name", path: "/hello/J%C3%BCrgen%20K", want: true,
			binds: []Binding{{Name: "name", Value: "Jürgen K"}}},
		{name: "param malformed escape kept raw", pattern: "/q/:v", path: "/q/100%", want: true,
			binds: []Binding{{Name: "v", Value: "100%"}}},
		{name: "param empty segment", pattern: "/users/:id/posts", path: "/users//posts", want: false},
		{name: "two params", pattern: "/users/:uid/posts/:pid", path: "/users/7/posts/9", want: true,
			binds: []Binding{{Name: "uid", Value: "7"}, {Name: "pid", Value: "9"}}},
		{name: "path longer", pattern: "/users/:id", path: "/users/42/extra", want: false},
		{name: "pattern longer", pattern: "/users/:id/posts", path: "/users/42", want: false},
		{name: "wildcard many", pattern: "/files/*", path: "/files/a/b/c", want: true,
			binds: []Binding{{Name: "*", Value: "a/b/c"}}},
		{name: "wildcard one", pattern: "/files/*", path: "/files/a", want: true,
			binds: []Binding{{Name: "*", Value: "a"}}},
		{name: "wildcard zero", pattern: "/files/*", path: "/files", want: true},
		{name: "wildcard zero trailing slash", pattern: "/files/*", path: "/files/", want: true},
		{name: "wildcard decoded", pattern: "/files/*", path: "/files/a%2Fb/c%20d", want: true,
			binds: []Binding{{Name: "*", Value: "a/b/c d"}}},
		{name: "wildcard after param", pattern: "/u/:id/*", path: "/u/1/x/y", want: true,
			binds: []Binding{{Name: "id", Value: "1"}, {Name: "*", Value: "x/y"}}},
		{name: "wildcard prefix mismatch", pattern: "/files/*", path: "/static/a", want: false},
		{name: "bare wildcard root", pattern: "*", path: "/", want: true},
		{name: "bare wildcard", pattern: "/*", path: "/a/b", want: true,
			binds: []Binding{{Name: "*", Value: "a/b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binds, ok := Match(tt.pattern, tt.path)
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				assert.Nil(t, binds)
				return
			}
			assert.Equal(t, tt.binds, binds)
		})
	}
}

func TestMatch_IdenticalStringsAlwaysMatch(t *testing.T) {
	for _, p := range []string{"/", "/a", "/a/b/c", "/users/:id", "/files/*", "//double//slash"} {
		binds, ok := Match(p, p)
		assert.True(t, ok, p)
		assert.Empty(t, binds, p)
	}
}

func TestMatch_SegmentCountMismatchNeverMatches(t *testing.T) {
	pattern := "/a/:b/c"
	for n := 0; n < 6; n++ {
		if n == 3 {
			continue
		}
		path := ""
		for i := 0; i < n; i++ {
			path += fmt.Sprintf("/s%d", i)
		}
		_, ok := Match(pattern, path)
		assert.False(t, ok, path)
	}
}

func TestMatch_ConcurrentCallsAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", i)
			binds, ok := Match("/users/:id", "/users/"+id)
			if assert.True(t, ok) {
				assert.Equal(t, []Binding{{Name: "id", Value: id}}, binds)
			}
		}(i)
	}
	wg.Wait()
}

func TestValidate(t *testing.T) {
	require.Equal(t, -1, Validate("/files/*"))
	require.Equal(t, -1, Validate("/users/:id"))
	require.Equal(t, 0, Validate("/*/x"))
	require.Equal(t, 1, Validate("/a/:/b"))
}

func TestParamNames(t *testing.T) {
	require.Equal(t, []string{"uid", "pid", "*"}, ParamNames("/u/:uid/p/:pid/*"))
	require.Nil(t, ParamNames("/static"))
}
