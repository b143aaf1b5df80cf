package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

// Env vars consulted for the s3 record store credential when the config file
// omits it. A missing credential is fatal at startup.
const (
	EnvS3SecretID  = "MEMENTO_S3_SECRET_ID"
	EnvS3SecretKey = "MEMENTO_S3_SECRET_KEY"
)

type Config struct {
	Port        int               `json:"port"`
	JWTSecret   string            `json:"jwt_secret"`
	JWTTTLHours int               `json:"jwt_ttl_hours"`
	CORSOrigins []string          `json:"cors_origins"`
	LogConfig   logger.LogConfig  `json:"log_config"`
	RecordStore RecordStoreConfig `json:"record_store"`
}

type RecordStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.RecordStore.Type == "" {
		return nil, fmt.Errorf("record_store.type is required")
	}
	if cfg.RecordStore.Type == "s3" {
		if err := resolveS3Credential(&cfg.RecordStore); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// resolveS3Credential fills secret_id/secret_key from the environment when
// the config file leaves them blank.
func resolveS3Credential(rs *RecordStoreConfig) error {
	if rs.Data == nil {
		rs.Data = map[string]interface{}{}
	}
	if dataString(rs.Data, "secret_id") == "" {
		rs.Data["secret_id"] = strings.TrimSpace(os.Getenv(EnvS3SecretID))
	}
	if dataString(rs.Data, "secret_key") == "" {
		rs.Data["secret_key"] = strings.TrimSpace(os.Getenv(EnvS3SecretKey))
	}
	if dataString(rs.Data, "secret_id") == "" || dataString(rs.Data, "secret_key") == "" {
		return fmt.Errorf("s3 record store credential is missing: set record_store.data.secret_id/secret_key or %s/%s", EnvS3SecretID, EnvS3SecretKey)
	}
	return nil
}

func dataString(data map[string]interface{}, key string) string {
	value, _ := data[key].(string)
	return strings.TrimSpace(value)
}
