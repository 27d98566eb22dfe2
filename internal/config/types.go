package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	// DigestInterval is how often the standings of every league are posted to Slack.
	DigestInterval time.Duration
}
type SlackConfig struct {
	Token     string
	ChannelID string
	// SigningSecret verifies slash commands. Empty disables verification.
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
