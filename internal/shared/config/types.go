package config

import "time"

type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
	Static StaticConfig `yaml:"static" mapstructure:"static"`
	Auth   AuthConfig   `yaml:"auth" mapstructure:"auth"`
	CORS   CORSConfig   `yaml:"cors" mapstructure:"cors"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// MaxBodyBytes 单个请求体上限，超出按 413 拒绝。
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type WorkerConfig struct {
	// Size 为 0 时取 CPU 数。
	Size int `yaml:"size" mapstructure:"size"`
	// QueueSize 为 0 时取 Size*64。
	QueueSize     int           `yaml:"queue_size" mapstructure:"queue_size"`
	Policy        string        `yaml:"policy" mapstructure:"policy"` // reject/block
	SubmitTimeout time.Duration `yaml:"submit_timeout" mapstructure:"submit_timeout"`
}

type StaticConfig struct {
	Roots     []string      `yaml:"roots" mapstructure:"roots"`
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// MaxCachedBytes 单文件可缓存上限。
	MaxCachedBytes int `yaml:"max_cached_bytes" mapstructure:"max_cached_bytes"`
	// FilesRoot 是 /files/* 下载目录，为空时不挂载。
	FilesRoot string `yaml:"files_root" mapstructure:"files_root"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	AdminUser     string        `yaml:"admin_user" mapstructure:"admin_user"`
	AdminPassword string        `yaml:"admin_password" mapstructure:"admin_password"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}
