package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_NAME", "league.db")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("PORT", "8080")
	t.Setenv("TURSO_PRIMARY_URL", "")
	t.Setenv("GCP_PROJECT", "")
	t.Setenv("STANDINGS_DIGEST_INTERVAL", "24h")

	cfg := Load()
	assert.Equal(t, "league.db", cfg.DBName)
	assert.Equal(t, "C123", cfg.Slack.ChannelID)
	assert.Empty(t, cfg.Turso.PrimaryURL)
	assert.Empty(t, cfg.ProjectID)
	assert.Equal(t, 24*time.Hour, cfg.DigestInterval)
}

func TestParseIntervalDefault(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, parseInterval(""))
	assert.Equal(t, 90*time.Minute, parseInterval("1h30m"))
}
