package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ticketrail/settlement/internal/domain"
)

// Config is the resolved runtime configuration for the settlement engine.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string

	JWTSecret string

	OwnerAddress      string
	FoundationAddress string
	ObolBps           uint32
	ProtectBps        uint32

	RegistryEndpoint   string
	RevocationEndpoint string
	TreasuryEndpoint   string

	MaxDBConns         int32
	LockTTL            time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Settlement struct {
		Owner             string `yaml:"owner"`
		FoundationAddress string `yaml:"foundation_address"`
		ObolBps           uint32 `yaml:"obol_bps"`
		ProtectBps        uint32 `yaml:"protect_bps"`
	} `yaml:"settlement"`
	Collaborators struct {
		RegistryEndpoint   string `yaml:"registry_endpoint"`
		RevocationEndpoint string `yaml:"revocation_endpoint"`
		TreasuryEndpoint   string `yaml:"treasury_endpoint"`
	} `yaml:"collaborators"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "settlement-engine",
		HTTPPort:           8080,
		GRPCPort:           9090,
		ObolBps:            100,
		ProtectBps:         50,
		MaxDBConns:         20,
		LockTTL:            15 * time.Second,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Settlement.Owner != "" {
			cfg.OwnerAddress = f.Settlement.Owner
		}
		if f.Settlement.FoundationAddress != "" {
			cfg.FoundationAddress = f.Settlement.FoundationAddress
		}
		if f.Settlement.ObolBps > 0 {
			cfg.ObolBps = f.Settlement.ObolBps
		}
		if f.Settlement.ProtectBps > 0 {
			cfg.ProtectBps = f.Settlement.ProtectBps
		}
		if f.Collaborators.RegistryEndpoint != "" {
			cfg.RegistryEndpoint = f.Collaborators.RegistryEndpoint
		}
		if f.Collaborators.RevocationEndpoint != "" {
			cfg.RevocationEndpoint = f.Collaborators.RevocationEndpoint
		}
		if f.Collaborators.TreasuryEndpoint != "" {
			cfg.TreasuryEndpoint = f.Collaborators.TreasuryEndpoint
		}
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.OwnerAddress = envOrDefault("SETTLEMENT_OWNER", cfg.OwnerAddress)
	cfg.FoundationAddress = envOrDefault("FOUNDATION_ADDRESS", cfg.FoundationAddress)
	cfg.ObolBps = uint32(envInt("OBOL_BPS", int(cfg.ObolBps)))
	cfg.ProtectBps = uint32(envInt("PROTECT_BPS", int(cfg.ProtectBps)))
	cfg.RegistryEndpoint = envOrDefault("REGISTRY_GRPC_ENDPOINT", cfg.RegistryEndpoint)
	cfg.RevocationEndpoint = envOrDefault("REVOCATION_GRPC_ENDPOINT", cfg.RevocationEndpoint)
	cfg.TreasuryEndpoint = envOrDefault("TREASURY_GRPC_ENDPOINT", cfg.TreasuryEndpoint)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.LockTTL = time.Duration(envInt("SALE_LOCK_TTL_SECONDS", int(cfg.LockTTL.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.OwnerAddress == "" {
		return Config{}, fmt.Errorf("missing SETTLEMENT_OWNER")
	}
	if _, err := domain.ParseAddress(cfg.OwnerAddress); err != nil {
		return Config{}, fmt.Errorf("invalid SETTLEMENT_OWNER: %w", err)
	}
	if cfg.FoundationAddress != "" {
		if _, err := domain.ParseAddress(cfg.FoundationAddress); err != nil {
			return Config{}, fmt.Errorf("invalid FOUNDATION_ADDRESS: %w", err)
		}
	}
	if uint64(cfg.ObolBps)+uint64(cfg.ProtectBps) > uint64(domain.BpsDenominator) {
		return Config{}, fmt.Errorf("fee basis points exceed denominator")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
