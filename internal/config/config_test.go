package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		JWTSecret:       "a-development-secret-that-is-long-enough",
		JWTExpirationMS: 86400000,
		DBPassword:      "password",
		DBSSLMode:       "disable",
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missingPort := validConfig()
	missingPort.Port = ""
	assert.Error(t, missingPort.Validate())

	missingSecret := validConfig()
	missingSecret.JWTSecret = ""
	assert.Error(t, missingSecret.Validate())

	badTTL := validConfig()
	badTTL.JWTExpirationMS = 0
	assert.Error(t, badTTL.Validate())
}

func TestConfig_ValidateProduction(t *testing.T) {
	base := func() *Config {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "a-production-secret-that-is-long-enough"
		c.DBPassword = "sUp3r-str0ng-pa55"
		c.DBSSLMode = "require"
		return c
	}
	assert.NoError(t, base().Validate())

	defaultSecret := base()
	defaultSecret.JWTSecret = "change-this-secret-before-production"
	assert.Error(t, defaultSecret.Validate())

	shortSecret := base()
	shortSecret.JWTSecret = "short"
	assert.Error(t, shortSecret.Validate())

	weakDBPassword := base()
	weakDBPassword.DBPassword = "password"
	assert.Error(t, weakDBPassword.Validate())

	noSSL := base()
	noSSL.DBSSLMode = "disable"
	assert.Error(t, noSSL.Validate())
}

func TestConfig_TokenTTL(t *testing.T) {
	c := &Config{JWTExpirationMS: 3600000}
	assert.Equal(t, time.Hour, c.TokenTTL())
}
