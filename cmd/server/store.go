package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"budgettracker/internal/config"
	"budgettracker/internal/repository"
	ddbrepo "budgettracker/internal/repository/dynamodb"
	"budgettracker/internal/repository/memory"
	"budgettracker/internal/repository/postgres"
	"budgettracker/internal/repository/sqlite"
	storages3 "budgettracker/internal/storage/s3"
)

// openStore builds the persistence gateway named by store.driver
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Repository, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Store.SQLite.Path)

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil

	case config.DriverPostgres:
		return postgres.New(ctx, cfg.Store.Postgres.DSN)

	case config.DriverDynamoDB:
		ddbCfg := cfg.Store.DynamoDB
		awsCfg, err := loadAWSConfig(ctx, ddbCfg.Region)
		if err != nil {
			return nil, err
		}

		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if ddbCfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(ddbCfg.Endpoint)
			}
		})

		if ddbCfg.CreateTable {
			if err := ddbrepo.EnsureTable(ctx, client, ddbCfg.Table, ddbCfg.IDIndex); err != nil {
				return nil, err
			}
		}
		return ddbrepo.New(client, ddbCfg.Table, ddbCfg.IDIndex, logger), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// openPresigner builds the attachment upload URL signer
func openPresigner(ctx context.Context, cfg *config.Config) (*storages3.Presigner, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.Attachments.Region)
	if err != nil {
		return nil, err
	}
	return storages3.NewPresigner(awss3.NewFromConfig(awsCfg), cfg.Attachments.Bucket, cfg.Attachments.URLExpiration.Duration())
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
