package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"WebCore/internal/shared/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"Error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestInit_写文件并支持动态级别(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	lvl, err := Init("test", config.LogConfig{FileDir: file, Level: "warn"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if lvl.Level() != zapcore.WarnLevel {
		t.Fatalf("期望 warn, got=%v", lvl.Level())
	}

	Info("dropped-info")
	Warn("kept-warn")
	SetLevel("info")
	Info("kept-info")
	_ = Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "dropped-info") {
		t.Fatalf("warn 级别下不应输出 info")
	}
	if !strings.Contains(out, "kept-warn") || !strings.Contains(out, "kept-info") {
		t.Fatalf("日志文件缺少预期内容: %s", out)
	}
	if !strings.Contains(out, `"logger":"test"`) {
		t.Fatalf("期望 JSON 输出带 logger 名: %s", out)
	}
}
