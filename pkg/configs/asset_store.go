package configs

type StorageType string

const (
	LOCAL StorageType = "local"
	S3    StorageType = "s3"
)

// AssetStoreConfig selects where recording bytes are persisted.
// StoragePathPrefix is the base directory for local storage and the key
// prefix for s3.
type AssetStoreConfig struct {
	StorageType       StorageType `mapstructure:"storage_type" validate:"required,oneof=local s3"`
	StoragePathPrefix string      `mapstructure:"storage_path_prefix" validate:"required"`
	Bucket            string      `mapstructure:"bucket" validate:"required_if=StorageType s3"`
	Endpoint          string      `mapstructure:"endpoint"`
	Auth              AwsConfig   `mapstructure:"auth"`
}

type AwsConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyId     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}
