package main

import (
	"fmt"
	"time"

	"github.com/barberdesk/barberdesk/libs/config"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/consumer"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/schedulecache"
)

type settings struct {
	ServiceName string
	LogLevel    string
	Port        string
	GRPCPort    string

	DatabaseURL    string
	DBMaxConns     int32
	MigrateOnStart bool

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ScheduleCacheTTL time.Duration

	KafkaBrokers string
	KafkaGroupID string
	KafkaTopic   string

	RateLimitPerMinute int
	RateLimitFailOpen  bool
	CORSOrigins        []string
	RequestTimeout     time.Duration

	Location *time.Location
}

func loadSettings() (settings, error) {
	s := settings{
		ServiceName:       config.String("SERVICE_NAME", "availability-service"),
		LogLevel:          config.String("LOG_LEVEL", "info"),
		MigrateOnStart:    config.Bool("MIGRATE_ON_START", false),
		RedisAddr:         config.String("REDIS_ADDR", ""),
		RedisPassword:     config.String("REDIS_PASSWORD", ""),
		KafkaBrokers:      config.String("KAFKA_BROKERS", ""),
		KafkaGroupID:      config.String("KAFKA_GROUP_ID", "availability-service"),
		KafkaTopic:        config.String("KAFKA_TOPIC_BUSINESS_HOURS", consumer.TopicBusinessHoursUpdated),
		CORSOrigins:       config.List("CORS_ALLOWED_ORIGINS"),
		RateLimitFailOpen: config.Bool("RATE_LIMIT_FAIL_OPEN", true),
	}

	var err error
	if s.Port, err = config.Port("PORT", "8085"); err != nil {
		return s, err
	}
	if s.GRPCPort, err = config.Port("GRPC_PORT", "9095"); err != nil {
		return s, err
	}
	if s.DatabaseURL, err = config.RequiredString("DATABASE_URL"); err != nil {
		return s, err
	}
	maxConns, err := config.Int("DB_MAX_CONNS", 10)
	if err != nil {
		return s, err
	}
	s.DBMaxConns = int32(maxConns)
	if s.RedisDB, err = config.Int("REDIS_DB", 0); err != nil {
		return s, err
	}
	if s.ScheduleCacheTTL, err = config.Duration("SCHEDULE_CACHE_TTL", schedulecache.DefaultTTL); err != nil {
		return s, err
	}
	if s.RateLimitPerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return s, err
	}
	if s.RequestTimeout, err = config.Duration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return s, err
	}

	tz := config.String("SCHEDULE_TIMEZONE", "")
	if s.Location, err = availability.ParseLocation(tz); err != nil {
		return s, fmt.Errorf("SCHEDULE_TIMEZONE: %w", err)
	}
	return s, nil
}
