package env

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds environment variables
type Config struct {
	// Azure AD service principal
	TenantID     string
	ClientID     string
	ClientSecret string

	// Managed identity endpoint, present when running inside Azure
	IdentityEndpoint string
	IdentityHeader   string

	// Synapse dedicated pool (source)
	SynapseServer   string
	SynapseDatabase string
	SynapseUser     string
	SynapsePassword string

	// Fabric warehouse (target)
	FabricServer   string
	FabricDatabase string

	// Staging storage
	StorageAccount   string
	StorageContainer string
	StorageSASToken  string
}

// Load reads environment variables, optionally seeded from a .env file in
// workDir. A missing .env file is not an error; process environment wins.
func Load(workDir string) (*Config, error) {
	envFile := filepath.Join(workDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		// godotenv never overrides variables already set.
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}

	return &Config{
		TenantID:     os.Getenv("AZURE_TENANT_ID"),
		ClientID:     os.Getenv("AZURE_CLIENT_ID"),
		ClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),

		IdentityEndpoint: os.Getenv("IDENTITY_ENDPOINT"),
		IdentityHeader:   os.Getenv("IDENTITY_HEADER"),

		SynapseServer:   getEnvOrDefault("SYNAPSE_SERVER", ""),
		SynapseDatabase: getEnvOrDefault("SYNAPSE_DATABASE", ""),
		SynapseUser:     getEnvOrDefault("SYNAPSE_USER", ""),
		SynapsePassword: getEnvOrDefault("SYNAPSE_PASSWORD", ""),

		FabricServer:   getEnvOrDefault("FABRIC_SQL_SERVER", ""),
		FabricDatabase: getEnvOrDefault("FABRIC_SQL_DATABASE", ""),

		StorageAccount:   getEnvOrDefault("STAGING_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnvOrDefault("STAGING_STORAGE_CONTAINER", "migration-staging"),
		StorageSASToken:  os.Getenv("STAGING_STORAGE_SAS"),
	}, nil
}

// HasManagedIdentity reports whether the ambient managed-identity
// endpoint is available.
func (c *Config) HasManagedIdentity() bool {
	return c.IdentityEndpoint != "" && c.IdentityHeader != ""
}

// HasServicePrincipal reports whether client-credential auth is fully
// configured.
func (c *Config) HasServicePrincipal() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
