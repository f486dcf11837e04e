package convert

import (
	"strings"

	"github.com/google/uuid"
)

// ConvertPipeline converts one full pipeline definition document and
// returns the converted document together with the run's summary. Every
// call constructs a fresh Session, so a Converter can be shared across
// documents without cross-contaminating summaries or audit logs.
func (c *Converter) ConvertPipeline(doc map[string]any, audit *AuditLog) (map[string]any, Summary) {
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
	}
	props = deepCopy(props).(map[string]any)

	s := &Session{
		Config:  c.cfg,
		Params:  props,
		Summary: NewRecorder(),
		Audit:   audit,
		Logger:  c.logger,
	}

	fixVariableDefaults(props)

	if list, ok := props["activities"].([]any); ok {
		props["activities"] = c.ConvertActivities(s, list, "root")
	} else {
		props["activities"] = []any{}
	}

	name, _ := doc["name"].(string)
	if name == "" {
		name = "ConvertedPipeline"
	}
	out := map[string]any{
		"name":       name,
		"objectId":   uuid.NewString(),
		"properties": props,
	}

	summary := s.Summary.Summary()
	audit.Summary(summary)
	return out, summary
}

// fixVariableDefaults repairs the doubled-colon typo that a generation of
// exported definitions carried in string variable defaults.
func fixVariableDefaults(props map[string]any) {
	vars, ok := props["variables"].(map[string]any)
	if !ok {
		return
	}
	for _, raw := range vars {
		v, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if dv, ok := v["defaultValue"].(string); ok && strings.Contains(dv, "::") {
			v["defaultValue"] = strings.ReplaceAll(dv, "::", ":")
		}
	}
}
