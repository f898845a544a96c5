package config

import (
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rapidaai/meetcap/pkg/configs"
	"github.com/rapidaai/meetcap/pkg/utils"
	"github.com/spf13/viper"
)

type NotifierType string

const (
	NotifierNone    NotifierType = "none"
	NotifierRedis   NotifierType = "redis"
	NotifierWebhook NotifierType = "webhook"
)

// Application config structure
type AppConfig struct {
	Name           string                 `mapstructure:"service_name" validate:"required"`
	Version        string                 `mapstructure:"version" validate:"required"`
	Env            string                 `mapstructure:"env" validate:"required"`
	Host           string                 `mapstructure:"host" validate:"required"`
	Port           int                    `mapstructure:"port" validate:"required"`
	LogLevel       string                 `mapstructure:"log_level" validate:"required"`
	LogPath        string                 `mapstructure:"log_path"`
	PostgresConfig configs.PostgresConfig `mapstructure:"postgres" validate:"required"`
	MigrateOnStart bool                   `mapstructure:"migrate_on_start"`
	RedisConfig    configs.RedisConfig    `mapstructure:"redis"`

	AssetStoreConfig configs.AssetStoreConfig `mapstructure:"asset_store" validate:"required"`

	// hex (64 chars) or base64 (32 bytes); empty keeps recordings unencrypted
	AudioEncryptionKey string `mapstructure:"audio_encryption_key"`

	NotifierConfig     NotifierConfig     `mapstructure:"notifier"`
	LiveRecorderConfig LiveRecorderConfig `mapstructure:"live_recorder" validate:"required"`
	CorsConfig         CorsConfig         `mapstructure:"cors"`
}

type NotifierConfig struct {
	Type       NotifierType  `mapstructure:"type" validate:"omitempty,oneof=none redis webhook"`
	Channel    string        `mapstructure:"channel"`
	WebhookUrl string        `mapstructure:"webhook_url" validate:"required_if=Type webhook"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LiveRecorderConfig struct {
	ReadLimit int64         `mapstructure:"read_limit" validate:"required,gt=0"`
	WriteWait time.Duration `mapstructure:"write_wait" validate:"required"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (cfg *AppConfig) Environment() utils.Environment {
	return utils.FromEnvironmentStr(cfg.Env)
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		log.Printf("config file not loaded, reading from env variables: %v", err)
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// keeping watch on https://github.com/spf13/viper/issues/188
	v.SetDefault("SERVICE_NAME", "recorder-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("ENV", "development")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9010)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("POSTGRES__HOST", "localhost")
	v.SetDefault("POSTGRES__PORT", 5432)
	v.SetDefault("POSTGRES__DB_NAME", "<>")
	v.SetDefault("POSTGRES__AUTH__USER", "<>")
	v.SetDefault("POSTGRES__AUTH__PASSWORD", "<>")
	v.SetDefault("POSTGRES__MAX_OPEN_CONNECTION", 10)
	v.SetDefault("POSTGRES__MAX_IDEAL_CONNECTION", 10)
	v.SetDefault("POSTGRES__SSL_MODE", "disable")
	v.SetDefault("MIGRATE_ON_START", true)

	v.SetDefault("REDIS__HOST", "localhost")
	v.SetDefault("REDIS__PORT", 6379)
	v.SetDefault("REDIS__DB", 0)
	v.SetDefault("REDIS__PASSWORD", "")

	v.SetDefault("ASSET_STORE__STORAGE_TYPE", "local")
	v.SetDefault("ASSET_STORE__STORAGE_PATH_PREFIX", "./data/recordings")
	v.SetDefault("ASSET_STORE__BUCKET", "")
	v.SetDefault("ASSET_STORE__ENDPOINT", "")
	v.SetDefault("ASSET_STORE__AUTH__REGION", "")
	v.SetDefault("ASSET_STORE__AUTH__ACCESS_KEY_ID", "")
	v.SetDefault("ASSET_STORE__AUTH__SECRET_ACCESS_KEY", "")

	v.SetDefault("AUDIO_ENCRYPTION_KEY", "")

	v.SetDefault("NOTIFIER__TYPE", "none")
	v.SetDefault("NOTIFIER__CHANNEL", "recording.saved")
	v.SetDefault("NOTIFIER__WEBHOOK_URL", "")
	v.SetDefault("NOTIFIER__TIMEOUT", "5s")

	v.SetDefault("LIVE_RECORDER__READ_LIMIT", 1<<20)
	v.SetDefault("LIVE_RECORDER__WRITE_WAIT", "10s")

	v.SetDefault("CORS__ALLOWED_ORIGINS", "*")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
