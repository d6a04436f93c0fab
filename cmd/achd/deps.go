package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kevin07696/ach-processor/internal/adapters/memory"
	"github.com/kevin07696/ach-processor/internal/adapters/postgres"
	"github.com/kevin07696/ach-processor/internal/adapters/sink"
	"github.com/kevin07696/ach-processor/internal/adapters/tokenizer"
	"github.com/kevin07696/ach-processor/internal/config"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	httpclient "github.com/kevin07696/ach-processor/pkg/http"
)

// stores groups the persistence ports. Postgres when enabled, memory otherwise.
type stores struct {
	pool          *pgxpool.Pool
	outbox        ports.OutboxRepository
	verifications ports.VerificationStore
	schedules     ports.RecurringScheduleStore
}

func initStores(ctx context.Context, cfg *config.Config, logger ports.Logger, zlog *zap.Logger) (*stores, error) {
	if !cfg.Database.Enabled {
		zlog.Warn("DB_ENABLED is false, using in-memory stores; queued payments are lost on restart")
		return &stores{
			outbox:        memory.NewOutboxStore(),
			verifications: memory.NewVerificationStore(),
			schedules:     memory.NewScheduleStore(),
		}, nil
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.ConnectionString())
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.Connect(ctx, poolCfg, logger)
	if err != nil {
		return nil, err
	}

	db := postgres.NewDBExecutor(pool)
	zlog.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)

	return &stores{
		pool:          pool,
		outbox:        postgres.NewOutboxRepository(db),
		verifications: postgres.NewVerificationRepository(db),
		schedules:     postgres.NewRecurringScheduleRepository(db),
	}, nil
}

func initTokenizer(ctx context.Context, cfg config.TokenizerConfig, logger ports.Logger) (ports.Tokenizer, error) {
	switch cfg.Backend {
	case config.TokenizerVault:
		vaultCfg := tokenizer.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.AuthMethod = cfg.VaultAuthMethod
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.RoleID = cfg.VaultRoleID
		vaultCfg.SecretID = cfg.VaultSecretID
		vaultCfg.Namespace = cfg.VaultNamespace
		vaultCfg.MountPath = cfg.VaultMountPath
		vaultCfg.PathPrefix = cfg.VaultPathPrefix
		return tokenizer.NewVaultTokenizer(ctx, vaultCfg, logger)
	case config.TokenizerAWS:
		return tokenizer.NewAWSTokenizer(ctx, &tokenizer.AWSConfig{
			Region:       cfg.AWSRegion,
			Profile:      cfg.AWSProfile,
			Endpoint:     cfg.AWSEndpoint,
			SecretPrefix: cfg.AWSSecretPrefix,
			KMSKeyID:     cfg.AWSKMSKeyID,
		}, logger)
	case config.TokenizerMemory:
		return tokenizer.NewMemoryTokenizer(), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer backend %q", cfg.Backend)
	}
}

// initSink returns nil when no sync manager is configured
func initSink(cfg config.OutboxConfig, logger ports.Logger) (ports.PaymentSink, error) {
	if cfg.SinkURL == "" {
		return nil, nil
	}
	sinkCfg := sink.Config{URL: cfg.SinkURL, Secret: cfg.SinkSecret}
	if err := sinkCfg.Validate(); err != nil {
		return nil, fmt.Errorf("sync manager sink: %w", err)
	}
	return sink.NewHTTPSink(sinkCfg, httpclient.NewClient(httpclient.SyncManagerClientConfig()), logger), nil
}

const poolMonitorInterval = 30 * time.Second
