package postgres

import (
	"testing"

	"signal-desk/config"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSNAndURL(t *testing.T) {
	cfg := config.Database{
		Host:     "db",
		Port:     5432,
		User:     "desk",
		Password: "p@ss word",
		DBName:   "signals",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	assert.Equal(t, "host=db user=desk password=p@ss word dbname=signals port=5432 sslmode=disable TimeZone=UTC", DSN(cfg))
	assert.Equal(t, "postgres://desk:p%40ss%20word@db:5432/signals?sslmode=disable", URL(cfg))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel("Silent"))
	assert.Equal(t, gormlogger.Info, gormLogLevel("Info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}
