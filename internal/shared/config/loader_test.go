package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"WebCore/modules/kit/errx"
)

const sampleYAML = `
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 3s
worker:
  size: 2
  queue_size: 8
  policy: block
  submit_timeout: 50ms
static:
  roots: [./public, ./assets]
  cache_ttl: 1m
auth:
  jwt_secret: s3cret
log:
  level: debug
`

func writeConf(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "conf.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	return p
}

func TestLoad_读取yaml并补默认值(t *testing.T) {
	l, err := Load(writeConf(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := l.Config()

	if c.Server.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr 不符: %s", c.Server.Addr())
	}
	if c.Server.ReadTimeout != 3*time.Second {
		t.Fatalf("read_timeout 不符: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout != 15*time.Second {
		t.Fatalf("write_timeout 应取默认值, got=%v", c.Server.WriteTimeout)
	}
	if c.Worker.Policy != "block" || c.Worker.SubmitTimeout != 50*time.Millisecond {
		t.Fatalf("worker 配置不符: %+v", c.Worker)
	}
	if len(c.Static.Roots) != 2 || c.Static.Roots[1] != "./assets" {
		t.Fatalf("static.roots 不符: %v", c.Static.Roots)
	}
	if c.Static.CacheTTL != time.Minute || c.Static.CacheSize != 256 {
		t.Fatalf("static 缓存配置不符: %+v", c.Static)
	}
	if c.Auth.TokenTTL != 24*time.Hour || c.Auth.AdminUser != "admin" {
		t.Fatalf("auth 默认值不符: %+v", c.Auth)
	}
	if len(c.CORS.AllowedOrigins) != 1 || c.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("cors 默认值不符: %+v", c.CORS)
	}
}

func TestLoad_环境变量覆盖(t *testing.T) {
	t.Setenv("WEBCORE_SERVER_PORT", "7070")
	t.Setenv("WEBCORE_STATIC_ROOTS", "/a,/b,/c")

	l, err := Load(writeConf(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := l.Config()
	if c.Server.Port != 7070 {
		t.Fatalf("期望环境变量覆盖端口, got=%d", c.Server.Port)
	}
	if len(c.Static.Roots) != 3 || c.Static.Roots[2] != "/c" {
		t.Fatalf("期望逗号分隔列表, got=%v", c.Static.Roots)
	}
}

func TestLoad_非法策略被拒绝(t *testing.T) {
	_, err := Load(writeConf(t, "worker:\n  policy: drop\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("期望 ErrInvalidConfig, got=%v", err)
	}
	if e, ok := errx.As(err); !ok || e.Data()["policy"] != "drop" {
		t.Fatalf("期望错误携带 policy, got=%v", err)
	}
}

func TestLoad_文件不存在(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("期望 ErrInvalidConfig, got=%v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"ok", Config{Server: ServerConfig{Port: 80}}, true},
		{"缺端口", Config{}, false},
		{"端口越界", Config{Server: ServerConfig{Port: 70000}}, false},
		{"负数队列", Config{Server: ServerConfig{Port: 80}, Worker: WorkerConfig{QueueSize: -1}}, false},
		{"负数缓存", Config{Server: ServerConfig{Port: 80}, Static: StaticConfig{CacheSize: -1}}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err == nil) != tc.ok {
			t.Fatalf("%s: ok=%v err=%v", tc.name, tc.ok, err)
		}
	}
}

func TestWorkerConfig_Workers默认值(t *testing.T) {
	size, queue := WorkerConfig{}.Workers()
	if size <= 0 || queue != size*64 {
		t.Fatalf("默认 worker 配置不符: size=%d queue=%d", size, queue)
	}
	size, queue = WorkerConfig{Size: 3, QueueSize: 5}.Workers()
	if size != 3 || queue != 5 {
		t.Fatalf("显式 worker 配置不符: size=%d queue=%d", size, queue)
	}
}

func TestWatch_热更新通知订阅方(t *testing.T) {
	p := writeConf(t, sampleYAML)
	l, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	changed := make(chan string, 4)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c.Log.Level:
		default:
		}
	})
	l.Watch(nil)

	// 等 watcher 建立
	time.Sleep(100 * time.Millisecond)
	updated := strings.Replace(sampleYAML, "level: debug", "level: warn", 1)
	if err := os.WriteFile(p, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case lvl := <-changed:
			if lvl == "warn" {
				if l.Config().Log.Level != "warn" {
					t.Fatalf("快照未更新")
				}
				return
			}
		case <-deadline:
			t.Fatalf("未收到配置变更通知")
		}
	}
}
