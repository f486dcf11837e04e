package convert

import (
	"fmt"
	"log/slog"
)

// Handler converts one source-schema activity into its target-schema
// form. Handlers are total: they shape whatever they are given and never
// return an error.
type Handler func(s *Session, act map[string]any) map[string]any

// Converter rewrites pipeline definitions from the ADF schema into the
// Fabric schema. One Converter is safe to reuse across conversions; the
// per-run state lives in the Session each call constructs.
type Converter struct {
	cfg      Config
	registry map[string]Handler
	logger   *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the structured logger used for conversion warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithHandler registers (or overrides) the handler for an activity type.
func WithHandler(activityType string, h Handler) Option {
	return func(c *Converter) { c.registry[activityType] = h }
}

// New creates a Converter with the default per-type handler registry.
func New(cfg Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:    cfg,
		logger: slog.Default(),
	}
	c.registry = map[string]Handler{
		"Copy":                     convertCopy,
		"SqlServerStoredProcedure": convertStoredProc,
		"ExecutePipeline":          convertInvokePipeline,
		"DatabricksNotebook":       convertNotebook,
		"Lookup":                   convertLookup,
		"GetMetadata":              convertGetMetadata,
		"Delete":                   convertDelete,
		"Script":                   convertScript,
		"SetVariable":              convertSetVariable,
		"ForEach":                  convertForEach,
		"HDInsightHive":            convertHDInsight,
		"HDInsightPig":             convertHDInsight,
		"HDInsightMapReduce":       convertHDInsight,
		"HDInsightSpark":           convertHDInsight,
		"HDInsightStreaming":       convertHDInsight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nestedListKeys is the complete set of single-list control-flow
// containers in the source schema: conditional true/false branches, loop
// bodies (ForEach, Until) and the switch default branch. Switch cases are
// handled separately because each case carries its own list.
var nestedListKeys = []string{
	"ifTrueActivities",
	"ifFalseActivities",
	"activities",
	"defaultActivities",
}

// ConvertActivities converts an ordered activity sequence, recursing into
// every nested control-flow container. Path labels grow by
// ".<name>(<type>)" per level plus a container suffix, which keeps audit
// entries unique even when activity names collide across branches.
func (c *Converter) ConvertActivities(s *Session, activities []any, parentPath string) []any {
	converted := make([]any, 0, len(activities))

	for idx, raw := range activities {
		act, ok := raw.(map[string]any)
		if !ok {
			converted = append(converted, deepCopy(raw))
			continue
		}

		srcType := activityType(act)
		name, _ := act["name"].(string)
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", idx)
		}
		path := fmt.Sprintf("%s.%s(%s)", parentPath, name, srcType)

		s.Audit.Pre(path, act)

		handler, ok := c.registry[srcType]
		if !ok {
			handler = convertPassthrough
		}
		out := handler(s, act)

		dstType, _ := out["type"].(string)
		note := s.takeNote()
		s.Summary.RecordMapping(path, srcType, dstType, note)

		var auditNotes map[string]any
		if note != "" {
			auditNotes = map[string]any{"note": note}
		}
		s.Audit.Mapping(path, srcType, dstType, auditNotes)

		c.recurseContainers(s, out, path)

		s.Audit.Post(path, out)
		converted = append(converted, out)
	}

	return converted
}

// recurseContainers descends into every known nested-activity container
// of a converted node. Each recursive call strictly descends one level of
// the finite source tree, so the walk terminates.
func (c *Converter) recurseContainers(s *Session, act map[string]any, path string) {
	tp, ok := act["typeProperties"].(map[string]any)
	if !ok {
		return
	}

	for _, key := range nestedListKeys {
		if list, ok := tp[key].([]any); ok {
			tp[key] = c.ConvertActivities(s, list, path+"."+key)
		}
	}

	cases, ok := tp["cases"].([]any)
	if !ok {
		return
	}
	rewritten := make([]any, len(cases))
	for i, raw := range cases {
		cse, ok := raw.(map[string]any)
		if !ok {
			rewritten[i] = raw
			continue
		}
		if list, ok := cse["activities"].([]any); ok {
			cse["activities"] = c.ConvertActivities(s, list, fmt.Sprintf("%s.cases[%d].activities", path, i))
		}
		rewritten[i] = cse
	}
	tp["cases"] = rewritten
}

// convertPassthrough is the fallback rule for unrecognized activity
// types: a structural deep copy with the type tag remapped and the inline
// connection reference stripped (Fabric resolves connections by reference
// elsewhere). It never fails, trading fidelity for robustness.
func convertPassthrough(s *Session, act map[string]any) map[string]any {
	out := deepCopy(act).(map[string]any)
	out["type"] = MapActivityType(activityType(act))
	if _, ok := out["linkedServiceName"]; ok {
		delete(out, "linkedServiceName")
		s.Note("passthrough + linked service reference removed")
	} else {
		s.Note("passthrough")
	}
	return out
}
