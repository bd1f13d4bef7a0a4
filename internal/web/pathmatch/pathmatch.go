// Package pathmatch 实现路由表达式与请求路径的逐段匹配。
//
// 表达式由 "/" 分隔的段组成：
//   - 字面段：必须与路径段完全相等
//   - ":name"：匹配任意一个非空段，并以 name 绑定解码后的值
//   - "*"：只能出现在最后，吞掉剩余的零个或多个段，以 "*" 绑定
//
// Match 是纯函数，可被任意多个 goroutine 并发调用。
package pathmatch

import (
	"net/url"
	"strings"
)

// Wildcard 是通配段，同时也是它的绑定名。
const Wildcard = "*"

// Binding 是一次匹配提取出的 (name, value)。
type Binding struct {
	Name  string
	Value string
}

// Match 判断 path 是否命中 pattern，并按段顺序返回绑定。未命中时 bindings 为 nil。
func Match(pattern, path string) ([]Binding, bool) {
	// 完全相同直接命中（包括根路径 "/"）。
	if pattern == path {
		return nil, true
	}

	patternSegs := Split(pattern)
	pathSegs := Split(path)

	var bindings []Binding
	pi := 0
	for ei, es := range patternSegs {
		if es == Wildcard && ei == len(patternSegs)-1 {
			// 余下为空时命中但不产生绑定。
			if pi < len(pathSegs) {
				rest := strings.Join(pathSegs[pi:], "/")
				bindings = append(bindings, Binding{Name: Wildcard, Value: decode(rest)})
			}
			return bindings, true
		}
		if pi >= len(pathSegs) {
			return nil, false
		}
		ps := pathSegs[pi]
		if name, ok := paramName(es); ok {
			if ps == "" {
				return nil, false
			}
			bindings = append(bindings, Binding{Name: name, Value: decode(ps)})
		} else if es != ps {
			return nil, false
		}
		pi++
	}

	if pi < len(pathSegs) {
		return nil, false
	}
	return bindings, true
}

// Split 去掉首尾 "/" 后按 "/" 切段；根路径返回空切片。
// 中间重复的 "/" 会产生空段，不做额外合并。
func Split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Validate 检查表达式结构：通配段只能在最后，参数段必须带名字。
// 返回第一个不合法的段下标，合法时为 -1。
func Validate(pattern string) int {
	segs := Split(pattern)
	for i, s := range segs {
		if s == Wildcard && i != len(segs)-1 {
			return i
		}
		if s == ":" {
			return i
		}
	}
	return -1
}

// ParamNames 返回表达式里声明的参数名（含通配 "*"），按出现顺序。
func ParamNames(pattern string) []string {
	var names []string
	for _, s := range Split(pattern) {
		if name, ok := paramName(s); ok {
			names = append(names, name)
		} else if s == Wildcard {
			names = append(names, Wildcard)
		}
	}
	return names
}

func paramName(seg string) (string, bool) {
	if len(seg) > 1 && seg[0] == ':' {
		return seg[1:], true
	}
	return "", false
}

// decode 做百分号解码；编码非法时保留原值。
func decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	v, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return v
}
