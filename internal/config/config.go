package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode      string `mapstructure:"mode"`
	ServerURL string `mapstructure:"server_url"`
	UIPort    int    `mapstructure:"ui_port"`

	Room     string `mapstructure:"room"`
	Password string `mapstructure:"password"`
	Username string `mapstructure:"username"`

	CaptureWidth  int `mapstructure:"capture_width"`
	CaptureHeight int `mapstructure:"capture_height"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("ui_port", 8090)
	v.SetDefault("capture_width", 1280)
	v.SetDefault("capture_height", 720)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Server: %s | UI port: %d\n", cfg.Mode, cfg.ServerURL, cfg.UIPort)
	return &cfg, nil
}
