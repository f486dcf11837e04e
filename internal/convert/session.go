package convert

import (
	"log/slog"

	"github.com/mitchellh/mapstructure"
)

// Policy is an activity's execution policy. Missing fields take the
// schema defaults.
type Policy struct {
	Timeout                string `json:"timeout" mapstructure:"timeout"`
	Retry                  int    `json:"retry" mapstructure:"retry"`
	RetryIntervalInSeconds int    `json:"retryIntervalInSeconds" mapstructure:"retryIntervalInSeconds"`
	SecureOutput           bool   `json:"secureOutput" mapstructure:"secureOutput"`
	SecureInput            bool   `json:"secureInput" mapstructure:"secureInput"`
}

const defaultPolicyTimeout = "0.12:00:00"

// Session is the per-conversion context injected into every handler and
// the walker. Two independent conversions never share a session: the
// recorder and audit log it carries belong to exactly one top-level
// conversion call.
type Session struct {
	Config  Config
	Params  map[string]any // the pipeline's properties bag (declared parameters etc.)
	Summary *Recorder
	Audit   *AuditLog
	Logger  *slog.Logger

	notes string
}

// Note attaches a free-form note to the current activity's conversion
// record. The walker collects it after dispatch.
func (s *Session) Note(text string) { s.notes = text }

func (s *Session) takeNote() string {
	n := s.notes
	s.notes = ""
	return n
}

// ResolveParam resolves a parameter role against the session's pipeline
// properties and records the choice in the summary.
func (s *Session) ResolveParam(role string) string {
	name := s.Config.ResolveParamName(s.Params, role)
	s.Summary.SetParam(role, name)
	return name
}

// deepCopy clones a JSON-value tree. Dependency references and user
// properties are always copied by value so mutating the converted tree
// never leaks into the source tree.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = deepCopy(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = deepCopy(x)
		}
		return s
	default:
		return v
	}
}

func deepCopyList(v any) []any {
	if list, ok := v.([]any); ok {
		return deepCopy(list).([]any)
	}
	return []any{}
}

// normalizePolicy decodes a raw policy bag and injects schema defaults
// for absent fields.
func normalizePolicy(raw any) map[string]any {
	p := Policy{
		Timeout:                defaultPolicyTimeout,
		RetryIntervalInSeconds: 30,
	}
	if m, ok := raw.(map[string]any); ok {
		// WeakDecode tolerates json numbers arriving as float64.
		_ = mapstructure.WeakDecode(m, &p)
	}
	return map[string]any{
		"timeout":                p.Timeout,
		"retry":                  p.Retry,
		"retryIntervalInSeconds": p.RetryIntervalInSeconds,
		"secureOutput":           p.SecureOutput,
		"secureInput":            p.SecureInput,
	}
}

// baseActivity builds the shared activity envelope: name, remapped type,
// deep-copied dependencies and user properties, normalized policy.
func baseActivity(act map[string]any, newType string) map[string]any {
	name, _ := act["name"].(string)
	if name == "" {
		name = "Unnamed_" + newType
	}
	return map[string]any{
		"name":           name,
		"type":           newType,
		"dependsOn":      deepCopyList(act["dependsOn"]),
		"policy":         normalizePolicy(act["policy"]),
		"userProperties": deepCopyList(act["userProperties"]),
	}
}

func typeProperties(act map[string]any) map[string]any {
	if tp, ok := act["typeProperties"].(map[string]any); ok {
		return tp
	}
	return map[string]any{}
}

func activityType(act map[string]any) string {
	t, _ := act["type"].(string)
	return t
}
