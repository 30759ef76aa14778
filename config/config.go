// Package config 基于 Viper 加载 OrbitArena 服务配置（YAML 文件 + ORBIT_ 环境变量 + 默认值）
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 监听设置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RoomConfig 房间规则
type RoomConfig struct {
	// Step 每条 Move 指令在单一坐标轴上的位移
	Step float64 `mapstructure:"step"`
}

// TransportConfig WebSocket 传输层设置
type TransportConfig struct {
	// MaxMessageSize 单条入站消息的读取上限（字节）
	MaxMessageSize int64 `mapstructure:"max_message_size"`
	// SendQueueSize 每个连接的出站队列长度
	SendQueueSize int `mapstructure:"send_queue_size"`
	// WriteWait 单帧写超时，0 表示不设置
	WriteWait time.Duration `mapstructure:"write_wait"`
	// PingPeriod 心跳间隔，0 表示关闭心跳
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
}

// LoggingConfig 日志设置；File 为空时只输出到 stdout
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config 顶层配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Room      RoomConfig      `mapstructure:"room"`
	Transport TransportConfig `mapstructure:"transport"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate 检查全部配置约束，一次性返回所有违规项
func (c Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if c.Room.Step <= 0 {
		errs = append(errs, fmt.Sprintf("room.step must be > 0, got %v", c.Room.Step))
	}
	if err := validateTransport(c.Transport); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.MaxMessageSize <= 0 {
		errs = append(errs, fmt.Sprintf("transport.max_message_size must be > 0, got %d", t.MaxMessageSize))
	}
	if t.SendQueueSize <= 0 {
		errs = append(errs, fmt.Sprintf("transport.send_queue_size must be > 0, got %d", t.SendQueueSize))
	}
	if t.WriteWait < 0 {
		errs = append(errs, "transport.write_wait must not be negative")
	}
	if t.PingPeriod < 0 {
		errs = append(errs, "transport.ping_period must not be negative")
	}
	if t.ReadBufferSize < 0 || t.WriteBufferSize < 0 {
		errs = append(errs, "transport buffer sizes must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.File != "" && (l.MaxSizeMB <= 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0) {
		return errors.New("logging rotation settings must be positive when logging.file is set")
	}
	return nil
}

// Load 读取配置：path 为空时只使用默认值与环境变量
func Load(path string) (Config, error) {
	v := viper.New()

	// ORBIT_ 前缀的环境变量覆盖，例如 ORBIT_ROOM_STEP=0.05
	v.SetEnvPrefix("ORBIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper 从已配置好的 Viper 实例构建并校验 Config
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default 返回全部使用默认值的配置
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值本身合法，这里不会失败
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("room.step", 0.01)

	v.SetDefault("transport.max_message_size", 4096)
	v.SetDefault("transport.send_queue_size", 256)
	v.SetDefault("transport.write_wait", "10s")
	v.SetDefault("transport.ping_period", "0s")
	v.SetDefault("transport.read_buffer_size", 1024)
	v.SetDefault("transport.write_buffer_size", 1024)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)
}
