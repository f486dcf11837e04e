package main

const configTemplate = `# Migration configuration for fabmig.
# ${VAR} references are expanded from the environment at load time.

conversion:
  workspace_id: ${FABRIC_WORKSPACE_ID}
  notebook_id: ""
  warehouse_connection_id: ""
  lakehouse_connection_id: ""
  oracle_connection_id: ""
  fabric_connection_id: ""
  blob_connection_id: ""
  warehouse_artifact_id: ""
  warehouse_endpoint: ""
  warehouse_name: "wh_sbm_gold"
  lakehouse_artifact_id: ""
  lakehouse_name: "lh_sbm_bronze"
  # Where Copy activity sinks land: lakehouse, blob or blobfs.
  target_sink: lakehouse

capacity:
  subscription_id: ${AZURE_SUBSCRIPTION_ID}
  resource_group: ""
  name: ""

fabric:
  workspace_id: ${FABRIC_WORKSPACE_ID}
  tenant_id: ${AZURE_TENANT_ID}

extract:
  storage_account: ${STAGING_STORAGE_ACCOUNT}
  storage_container: migration-staging
  workers: 4
  manifest_path: extract_manifest.json

load:
  workers: 4
  manifest_path: extract_manifest.json
  max_errors: 10000

migration:
  retries: 3
  retry_delay: 5s
`

const envTemplate = `# Azure AD service principal (used when no managed identity is available)
AZURE_TENANT_ID=
AZURE_CLIENT_ID=
AZURE_CLIENT_SECRET=
AZURE_SUBSCRIPTION_ID=

# Fabric target
FABRIC_WORKSPACE_ID=
FABRIC_SQL_SERVER=
FABRIC_SQL_DATABASE=

# Synapse dedicated pool (source)
SYNAPSE_SERVER=
SYNAPSE_DATABASE=
SYNAPSE_USER=
SYNAPSE_PASSWORD=

# Parquet staging storage
STAGING_STORAGE_ACCOUNT=
STAGING_STORAGE_CONTAINER=migration-staging
STAGING_STORAGE_SAS=
`
