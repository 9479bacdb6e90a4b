package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	DispatchTimeout  time.Duration `mapstructure:"DISPATCH_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	PushGatewayURL   string        `mapstructure:"PUSH_GATEWAY_URL"`
	SMSGatewayURL    string        `mapstructure:"SMS_GATEWAY_URL"`
	AdminRoleID      string        `mapstructure:"ADMIN_ROLE_ID"`
	SuperadminRoleID string        `mapstructure:"SUPERADMIN_ROLE_ID"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("DISPATCH_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_ROLE_ID", "admin")
	v.SetDefault("SUPERADMIN_ROLE_ID", "superadmin")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
