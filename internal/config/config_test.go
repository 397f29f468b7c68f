package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/crm-notifier/internal/queue"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: ":9090"
database:
  master:
    host: db
    port: "5432"
    user: u
    pass: p
    name: crm
    ssl_mode: disable
rabbitmq:
  host: mq
  port: 5672
  user: guest
  password: guest
scanner:
  cron: "*/2 * * * *"
  lookahead: 15m
  claim_ttl: 3m
queues:
  - name: telegram-message-queue
    max: 2
    duration: 10s
    types: [send_message]
chat:
  timezone: Europe/Berlin
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://u:p@db:5432/crm?sslmode=disable", cfg.Database.Master.DSN())
	assert.Equal(t, "amqp://guest:guest@mq:5672", cfg.RabbitMQ.URL())
	assert.Equal(t, BrokerRabbitMQ, cfg.Broker.Kind)
	assert.Equal(t, "attempted", cfg.Dispatcher.NotifiedWhen)

	assert.Equal(t, "*/2 * * * *", cfg.Scanner.Cron)
	assert.Equal(t, 15*time.Minute, cfg.Scanner.Lookahead)
	assert.Equal(t, 3*time.Minute, cfg.Scanner.ClaimTTL)

	queues := cfg.QueueConfigs()
	require.Len(t, queues, 1)
	assert.Equal(t, 2, queues[0].Max)
	assert.Equal(t, 10*time.Second, queues[0].Duration)
	assert.Equal(t, []string{"send_message"}, queues[0].Types)

	loc, err := cfg.ChatLocation()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, queue.DefaultConfigs(), cfg.QueueConfigs())

	loc, err := cfg.ChatLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BROKER_KIND", "memory")
	t.Setenv("NOTIFIED_WHEN", "delivered")

	cfg, err := Load(writeConfig(t, "broker:\n  kind: rabbitmq\n"))
	require.NoError(t, err)

	assert.Equal(t, BrokerMemory, cfg.Broker.Kind)
	assert.Equal(t, "delivered", cfg.Dispatcher.NotifiedWhen)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "broker:\n  kind: kafka\n"))
	assert.Error(t, err)
}
