package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botlab/robot-access/internal/core/domain"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.EvictOnSupersede)
	assert.False(t, cfg.Timeslot.RejectOverlap)
	assert.Equal(t, "robot_access", cfg.Mongo.Database)
	assert.Equal(t, "robot", cfg.Redis.ChannelPrefix)
	assert.Equal(t, 64, cfg.Gateway.SendBuffer)
	assert.Equal(t, 4, cfg.Gateway.RelayWorkers)
	assert.Equal(t, "localhost:8081", cfg.Robots.Addrs()[domain.ResourceROS])
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "s3cret",
		"ENV":                        "production",
		"SESSION_TTL":                "5m",
		"SESSION_EVICT_ON_SUPERSEDE": "false",
		"TIMESLOT_REJECT_OVERLAP":    "true",
		"ADMIN_PASSWORD":             "adm1n",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Session.EvictOnSupersede)
	assert.True(t, cfg.Timeslot.RejectOverlap)
	assert.Equal(t, "adm1n", cfg.Bootstrap.Passwords()[domain.RoleAdmin])
	assert.Empty(t, cfg.Bootstrap.Passwords()[domain.RoleRoot])
}

func TestLoadWith_RequiresSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}
