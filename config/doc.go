// Package config loads service configuration with viper.
//
// LoadConfig reads config.yml from an explicit path or the usual
// locations, loads a .env file through godotenv, then lets the process
// environment override any key: QDRANT_API_KEY fills qdrant.api_key.
// Durations decode from strings such as "10m".
package config
