package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Auth: AuthConfig{
			JWTSecret:              "0123456789abcdef0123",
			AccessTokenTTL:         15 * time.Minute,
			RefreshTokenTTLDefault: 24 * time.Hour,
			StudentEmailDomain:     "vitapstudent.ac.in",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"空密钥", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"短密钥", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"零有效期", func(c *Config) { c.Auth.AccessTokenTTL = 0 }},
		{"空学生域名", func(c *Config) { c.Auth.StudentEmailDomain = "" }},
		{"非法端口", func(c *Config) { c.Server.Port = 70000 }},
		{"未知驱动", func(c *Config) { c.Database.Driver = "mysql" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
db:
  driver: sqlite
auth:
  jwt_secret: "file-secret-0123456789"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("期望 driver=sqlite，实际=%s", cfg.Database.Driver)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("期望默认 AccessTokenTTL=15m，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.StudentEmailDomain != "vitapstudent.ac.in" {
		t.Errorf("期望默认学生域名，实际=%s", cfg.Auth.StudentEmailDomain)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: \"file-secret-0123456789\"\n"), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	t.Setenv("PLANIT_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("期望环境变量覆盖 port=7070，实际=%d", cfg.Server.Port)
	}
}
