package main

import (
	"fmt"

	"github.com/sandipan8609/fabric-migration-v1/internal/azauth"
	"github.com/sandipan8609/fabric-migration-v1/pkg/env"
)

// newTokenProvider picks managed identity when the ambient endpoint is
// present, falling back to service-principal credentials.
func newTokenProvider(envCfg *env.Config) (azauth.TokenProvider, error) {
	if envCfg.HasManagedIdentity() {
		return &azauth.ManagedIdentityProvider{
			Endpoint: envCfg.IdentityEndpoint,
			Header:   envCfg.IdentityHeader,
		}, nil
	}
	if envCfg.HasServicePrincipal() {
		return &azauth.ClientCredentialsProvider{
			TenantID:     envCfg.TenantID,
			ClientID:     envCfg.ClientID,
			ClientSecret: envCfg.ClientSecret,
		}, nil
	}
	return nil, fmt.Errorf("no Azure credentials available: set IDENTITY_ENDPOINT/IDENTITY_HEADER or AZURE_TENANT_ID/AZURE_CLIENT_ID/AZURE_CLIENT_SECRET")
}
