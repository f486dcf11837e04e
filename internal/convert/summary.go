package convert

// Record is one audit entry for a single converted node.
type Record struct {
	Path  string `json:"path"`
	From  string `json:"from"`
	To    string `json:"to"`
	Notes string `json:"notes,omitempty"`
}

// Summary is the serializable conversion report attached alongside the
// converted document.
type Summary struct {
	ActivityCounts struct {
		Input  map[string]int `json:"ADF_input"`
		Output map[string]int `json:"Fabric_output"`
	} `json:"activity_counts"`
	Mappings              []Record          `json:"mappings"`
	DatasetTypeMappings   map[string]string `json:"dataset_type_mappings"`
	ConnectorTypeMappings map[string]string `json:"connector_type_mappings"`
	SourceTypeMappings    map[string]string `json:"source_type_mappings"`
	SinkTypeMappings      map[string]string `json:"sink_type_mappings"`
	SinkChoice            string            `json:"sink_choice"`
	ParameterNamesUsed    map[string]string `json:"parameter_names_used"`
	ConvertedPaths        []string          `json:"converted_paths"`
}

// Recorder accumulates conversion records for one conversion run. It is
// not safe for concurrent use; each top-level conversion owns its own
// instance.
type Recorder struct {
	countInput  map[string]int
	countOutput map[string]int
	records     []Record

	datasetTypes   map[string]string
	connectorTypes map[string]string
	sourceTypes    map[string]string
	sinkTypes      map[string]string

	paramUse   map[string]string
	sinkChoice string
	paths      []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		countInput:     make(map[string]int),
		countOutput:    make(map[string]int),
		datasetTypes:   make(map[string]string),
		connectorTypes: make(map[string]string),
		sourceTypes:    make(map[string]string),
		sinkTypes:      make(map[string]string),
		paramUse: map[string]string{
			RoleSourceContainer: "",
			RoleSinkFolder:      "",
			RoleSinkFile:        "",
		},
	}
}

// RecordMapping registers one converted activity.
func (r *Recorder) RecordMapping(path, from, to, notes string) {
	if from == "" {
		from = "Unknown"
	}
	if to == "" {
		to = "Unknown"
	}
	r.records = append(r.records, Record{Path: path, From: from, To: to, Notes: notes})
	r.paths = append(r.paths, path)
	r.countInput[from]++
	r.countOutput[to]++
}

func (r *Recorder) RecordDatasetMapping(from, to string)   { r.datasetTypes[from] = to }
func (r *Recorder) RecordConnectorMapping(from, to string) { r.connectorTypes[from] = to }
func (r *Recorder) RecordSourceTypeMapping(from, to string) {
	r.sourceTypes[from] = to
}
func (r *Recorder) RecordSinkTypeMapping(from, to string) { r.sinkTypes[from] = to }

// SetParam records the parameter name resolved for a role.
func (r *Recorder) SetParam(role, name string) { r.paramUse[role] = name }

// SetSinkChoice records the configured copy sink target.
func (r *Recorder) SetSinkChoice(sink string) { r.sinkChoice = sink }

// Records returns the accumulated conversion records.
func (r *Recorder) Records() []Record { return r.records }

// Summary finalizes the recorder into a report.
func (r *Recorder) Summary() Summary {
	s := Summary{
		Mappings:              r.records,
		DatasetTypeMappings:   r.datasetTypes,
		ConnectorTypeMappings: r.connectorTypes,
		SourceTypeMappings:    r.sourceTypes,
		SinkTypeMappings:      r.sinkTypes,
		SinkChoice:            r.sinkChoice,
		ParameterNamesUsed:    r.paramUse,
		ConvertedPaths:        r.paths,
	}
	s.ActivityCounts.Input = r.countInput
	s.ActivityCounts.Output = r.countOutput
	return s
}
