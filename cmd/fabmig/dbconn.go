package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandipan8609/fabric-migration-v1/internal/azauth"
	"github.com/sandipan8609/fabric-migration-v1/internal/db"
	"github.com/sandipan8609/fabric-migration-v1/pkg/env"
)

// openSource connects to the source database, a dedicated SQL pool by
// default or PostgreSQL when driver is "postgres".
func openSource(ctx context.Context, envCfg *env.Config, driver string) (*sql.DB, error) {
	if envCfg.SynapseServer == "" || envCfg.SynapseDatabase == "" {
		return nil, fmt.Errorf("source pool not configured: set SYNAPSE_SERVER and SYNAPSE_DATABASE")
	}
	return db.Open(ctx, db.Params{
		Driver:   driver,
		Host:     envCfg.SynapseServer,
		Database: envCfg.SynapseDatabase,
		User:     envCfg.SynapseUser,
		Password: envCfg.SynapsePassword,
	})
}

// openFabricWarehouse connects to the target warehouse SQL endpoint using
// an Entra access token.
func openFabricWarehouse(ctx context.Context, envCfg *env.Config, tokens azauth.TokenProvider) (*sql.DB, error) {
	if envCfg.FabricServer == "" || envCfg.FabricDatabase == "" {
		return nil, fmt.Errorf("target warehouse not configured: set FABRIC_SQL_SERVER and FABRIC_SQL_DATABASE")
	}
	token, err := tokens.Token(ctx, azauth.ScopeSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire SQL access token: %w", err)
	}
	return db.Open(ctx, db.Params{
		Driver:      "sqlserver",
		Host:        envCfg.FabricServer,
		Database:    envCfg.FabricDatabase,
		AccessToken: token,
	})
}
