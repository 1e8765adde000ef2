package vision

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	compileOnce sync.Once
	schemas     map[DocumentKind]*jsonschema.Schema
	compileErr  error
)

func compiledSchema(kind DocumentKind) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		schemas = make(map[DocumentKind]*jsonschema.Schema, 2)
		for _, k := range []DocumentKind{KindPaystub, KindW2} {
			compiler := jsonschema.NewCompiler()
			name := string(k) + ".json"
			if err := compiler.AddResource(name, strings.NewReader(SchemaFor(k))); err != nil {
				compileErr = eris.Wrap(err, "vision: add schema resource")
				return
			}
			sch, err := compiler.Compile(name)
			if err != nil {
				compileErr = eris.Wrap(err, "vision: compile schema")
				return
			}
			schemas[k] = sch
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return schemas[kind], nil
}

// ParseResponse extracts the JSON object from a model reply, validates it
// against the kind's schema, and returns the decoded field mapping together
// with the raw JSON bytes.
func ParseResponse(kind DocumentKind, reply string) (map[string]any, []byte, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, nil, eris.Wrap(ErrInvalidResponse, "no JSON object in reply")
	}

	sch, err := compiledSchema(kind)
	if err != nil {
		return nil, nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, nil, eris.Wrap(ErrInvalidResponse, err.Error())
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, nil, eris.Wrap(ErrInvalidResponse, err.Error())
	}
	if err := sch.Validate(v); err != nil {
		return nil, nil, eris.Wrap(ErrInvalidResponse, err.Error())
	}

	return fields, []byte(raw), nil
}

// extractJSON pulls the outermost {...} from a reply that may carry prose
// or a markdown fence around the object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
