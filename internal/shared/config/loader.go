package config

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Loader 持有 viper 实例与当前配置快照。
//
// 热更新只替换快照并通知订阅方；路由等启动期配置不会因此变化。
type Loader struct {
	v    *viper.Viper
	path string

	mu        sync.RWMutex
	cur       *Config
	listeners []func(*Config)
}

// Load 读取并校验配置，cfgName 规则见 Resolve。
func Load(cfgName string) (*Loader, error) {
	path, err := Resolve(cfgName)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, ErrInvalidConfig.WithMsg("read config failed").WithData("path", path).WithCause(err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Loader{v: v, path: path, cur: cfg}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 4<<20)

	v.SetDefault("worker.size", 0)
	v.SetDefault("worker.queue_size", 0)
	v.SetDefault("worker.policy", "reject")
	v.SetDefault("worker.submit_timeout", 100*time.Millisecond)

	v.SetDefault("static.roots", []string{})
	v.SetDefault("static.cache_size", 256)
	v.SetDefault("static.cache_ttl", 5*time.Minute)
	v.SetDefault("static.max_cached_bytes", 1<<20)
	v.SetDefault("static.files_root", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password", "")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	// 环境变量里的列表用逗号分隔：WEBCORE_STATIC_ROOTS=./public,./assets
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, ErrInvalidConfig.WithMsg("decode config failed").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path 实际读取的配置文件路径。
func (l *Loader) Path() string { return l.path }

// Config 返回当前快照，调用方不得修改。
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// OnChange 注册热更新回调，在 Watch 之前调用。
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Watch 监听配置文件变化。解码或校验失败时保留旧配置，并通过 onErr 通知。
func (l *Loader) Watch(onErr func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(l.v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		l.mu.Lock()
		l.cur = cfg
		listeners := append([]func(*Config){}, l.listeners...)
		l.mu.Unlock()
		for _, fn := range listeners {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}
