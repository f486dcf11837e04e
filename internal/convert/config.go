package convert

// Parameter roles resolved against a pipeline's declared parameters.
const (
	RoleSourceContainer = "source_container"
	RoleSinkFolder      = "sink_folder"
	RoleSinkFile        = "sink_file"
)

// Sink target modes for copy-activity dataset settings.
const (
	SinkLakehouse = "lakehouse"
	SinkBlob      = "blob"
	SinkBlobFS    = "blobfs"
)

// Config carries the tenant-specific identifiers and conversion options
// the converters need. Values come from the migration config file; the
// defaults mirror the reference environment.
type Config struct {
	WorkspaceID string `yaml:"workspace_id" mapstructure:"workspace_id"`
	NotebookID  string `yaml:"notebook_id" mapstructure:"notebook_id"`

	// Connection GUIDs from the target tenant.
	WarehouseConnectionID string `yaml:"warehouse_connection_id" mapstructure:"warehouse_connection_id"`
	LakehouseConnectionID string `yaml:"lakehouse_connection_id" mapstructure:"lakehouse_connection_id"`
	OracleConnectionID    string `yaml:"oracle_connection_id" mapstructure:"oracle_connection_id"`
	FabricConnectionID    string `yaml:"fabric_connection_id" mapstructure:"fabric_connection_id"`
	BlobConnectionID      string `yaml:"blob_connection_id" mapstructure:"blob_connection_id"`

	// Artifacts.
	WarehouseArtifactID   string `yaml:"warehouse_artifact_id" mapstructure:"warehouse_artifact_id"`
	WarehouseEndpoint     string `yaml:"warehouse_endpoint" mapstructure:"warehouse_endpoint"`
	WarehouseName         string `yaml:"warehouse_name" mapstructure:"warehouse_name"`
	LakehouseArtifactID   string `yaml:"lakehouse_artifact_id" mapstructure:"lakehouse_artifact_id"`
	LakehouseName         string `yaml:"lakehouse_name" mapstructure:"lakehouse_name"`
	PlaceholderPipelineID string `yaml:"placeholder_pipeline_id" mapstructure:"placeholder_pipeline_id"`

	// Copy sink selection: "lakehouse" | "blob" | "blobfs".
	TargetSink string `yaml:"target_sink" mapstructure:"target_sink"`

	// Parameter candidates supporting multiple pipeline naming conventions.
	ParamCandidates map[string][]string `yaml:"param_candidates" mapstructure:"param_candidates"`

	// Debug mirrors audit sections to stdout.
	Debug bool `yaml:"debug" mapstructure:"debug"`
}

// DefaultConfig returns the reference-environment configuration.
func DefaultConfig() Config {
	return Config{
		WorkspaceID: "95e132cd-cf5f-4e15-a9e1-7506994aa23c",
		NotebookID:  "your_fabric_notebook_id",

		WarehouseConnectionID: "06f15094-5415-40ca-9647-985fa72a41fe",
		LakehouseConnectionID: "e31de1f3-905a-400e-8c21-1bfcc5c7719c",
		OracleConnectionID:    "1320ffbd-c314-4267-be68-d3e63f7ff4df",
		FabricConnectionID:    "e31de1f3-905a-400e-8c21-1bfcc5c7719c",
		BlobConnectionID:      "835ec99b-46ec-4d2f-86e5-7e2ca052bf0c",

		WarehouseArtifactID:   "6068bf54-5806-44df-996b-f19fac38d18c",
		WarehouseEndpoint:     "uz5qo3w55cyebj7ffmgl7aydcm-zuzodfk7z4ku5kpboudjssvchq.datawarehouse.fabric.microsoft.com",
		WarehouseName:         "wh_sbm_gold",
		LakehouseArtifactID:   "2d07daef-8c0b-454d-9a31-28faec11c440",
		LakehouseName:         "lh_sbm_bronze",
		PlaceholderPipelineID: "40dfe58b-19e1-47bf-bafb-2b38705dd06f",

		TargetSink: SinkLakehouse,

		ParamCandidates: map[string][]string{
			RoleSourceContainer: {"containerName", "blob_container"},
			RoleSinkFolder:      {"destinationPath", "blob_path"},
			RoleSinkFile:        {"fileName", "file_name"},
		},
	}
}

// ResolveParamName picks the declared parameter name for a role: the first
// candidate present in the pipeline's declared parameters, else the first
// candidate unconditionally, else "".
func (c Config) ResolveParamName(pipelineProps map[string]any, role string) string {
	candidates := c.ParamCandidates[role]
	params, _ := pipelineProps["parameters"].(map[string]any)
	for _, name := range candidates {
		if _, ok := params[name]; ok {
			return name
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}
