package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"WebCore/modules/kit/errx"
)

const defaultConfigRelPath = "configs/conf.yml"

// EnvPrefix 环境变量覆盖前缀，例如 WEBCORE_SERVER_PORT=9090。
const EnvPrefix = "WEBCORE"

var ErrInvalidConfig = errx.NewSys(errx.CodeConfig, "invalid config")

// Resolve 定位配置文件：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfgName != "" {
		if !filepath.IsAbs(cfgName) {
			cfgName = filepath.Join(curDir, cfgName)
		}
		if !fileExist(cfgName) {
			return "", ErrInvalidConfig.WithMsg("config file not exist").WithData("path", cfgName)
		}
		return cfgName, nil
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrInvalidConfig.
				WithMsg("config file not exist, searched " + defaultConfigRelPath).
				WithData("from", startDir)
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}

// Addr 监听地址。
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Workers 返回实际 worker 数与队列长度。
func (w WorkerConfig) Workers() (size, queue int) {
	size = w.Size
	if size <= 0 {
		size = runtime.NumCPU()
	}
	queue = w.QueueSize
	if queue <= 0 {
		queue = size * 64
	}
	return size, queue
}

// Validate 只校验启动必需项，其余字段有默认值兜底。
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalidConfig.WithMsg(fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Worker.Size < 0 || c.Worker.QueueSize < 0 {
		return ErrInvalidConfig.WithMsg("worker.size and worker.queue_size must not be negative")
	}
	switch c.Worker.Policy {
	case "", "reject", "block":
	default:
		return ErrInvalidConfig.WithMsg("worker.policy must be reject or block").WithData("policy", c.Worker.Policy)
	}
	if c.Static.CacheSize < 0 {
		return ErrInvalidConfig.WithMsg("static.cache_size must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return ErrInvalidConfig.WithMsg("server.max_body_bytes must not be negative")
	}
	return nil
}
