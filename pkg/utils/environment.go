package utils

import "strings"

type Environment string

const (
	PRODUCTION  Environment = "production"
	DEVELOPMENT Environment = "development"
)

func (e Environment) Get() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == PRODUCTION
}

// FromEnvironmentStr resolves an environment name case-insensitively,
// defaulting to development.
func FromEnvironmentStr(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production":
		return PRODUCTION
	default:
		return DEVELOPMENT
	}
}
