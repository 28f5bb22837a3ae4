package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		AuthHTTPPort  string        `mapstructure:"authHTTPPort"`
		RiderHTTPPort string        `mapstructure:"riderHTTPPort"`
		Timeout       time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT struct {
		SecretKey string        `mapstructure:"secretKey"`
		TokenTTL  time.Duration `mapstructure:"tokenTTL"`
		Issuer    string        `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	RiderService struct {
		BaseURL string        `mapstructure:"baseURL"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"riderService"`
}

// minSecretLen is the shortest signing key HS512 should be run with.
const minSecretLen = 32

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Environment overrides: JWT_SECRETKEY, REPOSITORIES_POSTGRES_PASSWORD, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.JWT.SecretKey) < minSecretLen {
		return Config{}, fmt.Errorf("jwt.secretKey must be at least %d bytes", minSecretLen)
	}
	if config.JWT.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("jwt.tokenTTL must be positive")
	}

	return config, nil
}
