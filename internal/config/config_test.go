package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			Path:            "estudiar.db",
			Host:            "localhost",
			Port:            3306,
			Database:        "estudiar",
			Username:        "user",
			ConnectAttempts: 3,
		},
		Telegram: TelegramConfig{
			APIURL: "https://api.telegram.org",
		},
		Outputs: OutputsConfig{
			ReportDirectory: "outputs/report",
			ExportDirectory: "outputs/export",
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:    "no config file uses defaults",
			wantErr: false,
			want:    defaultConfig,
		},
		{
			name: "mysql config with custom values",
			configContent: `database:
  driver: mysql
  host: db.example.com
  port: 3307
  database: study
  username: admin
  max_open_conns: 10
  connect_attempts: 5
outputs:
  report_directory: custom/report
  export_directory: custom/export
`,
			env: map[string]string{"DB_PASSWORD": "secret"},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.Driver = "mysql"
				cfg.Database.Host = "db.example.com"
				cfg.Database.Port = 3307
				cfg.Database.Database = "study"
				cfg.Database.Username = "admin"
				cfg.Database.Password = "secret"
				cfg.Database.MaxOpenConns = 10
				cfg.Database.ConnectAttempts = 5
				cfg.Outputs.ReportDirectory = "custom/report"
				cfg.Outputs.ExportDirectory = "custom/export"
				return cfg
			},
		},
		{
			name: "telegram credentials from environment",
			configContent: `telegram:
  api_url: http://localhost:8081
`,
			useExplicitPath: true,
			env:             map[string]string{"TELEGRAM_TOKEN": "123:abc", "TELEGRAM_CHAT_ID": "42"},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Telegram = TelegramConfig{Token: "123:abc", ChatID: "42", APIURL: "http://localhost:8081"}
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `database:
  driver: mysql
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown driver",
			configContent: `database:
  driver: postgres
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "driver must be one of [mysql sqlite3]"},
		},
		{
			name: "sqlite path in a missing directory",
			configContent: `database:
  driver: sqlite3
  path: missing/dir/estudiar.db
`,
			wantErr:           true,
			wantErrorContains: []string{"path must be in an existing directory"},
		},
		{
			name: "zero connect attempts",
			configContent: `database:
  connect_attempts: 0
`,
			wantErr:           true,
			wantErrorContains: []string{"connect_attempts must be 1 or greater"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_PASSWORD", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
				t.Setenv(key, tt.env[key])
			}
			tempDir := t.TempDir()
			t.Chdir(tempDir)

			var configPath string
			if tt.configContent != "" {
				name := "config.yaml"
				if tt.useExplicitPath {
					name = "estudiar.yml"
				}
				require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte(tt.configContent), 0644))
				if tt.useExplicitPath {
					configPath = filepath.Join(tempDir, name)
				}
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestTelegramConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  TelegramConfig
		want bool
	}{
		{name: "token and chat", cfg: TelegramConfig{Token: "t", ChatID: "c"}, want: true},
		{name: "missing chat", cfg: TelegramConfig{Token: "t"}, want: false},
		{name: "empty", cfg: TelegramConfig{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Enabled())
		})
	}
}
