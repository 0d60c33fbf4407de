package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/tui"
)

const (
	hookInputSchemaPath = "schema/hook-input.schema.json"
	decisionSchemaPath  = "schema/decision.schema.json"

	hookInputSchemaID = "https://bulwarkhq.github.io/bulwark/schema/hook-input.schema.json"
	decisionSchemaID  = "https://bulwarkhq.github.io/bulwark/schema/decision.schema.json"
)

type jsonSchema struct {
	Schema      string                `json:"$schema"`
	ID          string                `json:"$id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Type        string                `json:"type"`
	Properties  map[string]property   `json:"properties"`
	Required    []string              `json:"required"`
	Defs        map[string]definition `json:"$defs,omitempty"`
}

type property struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Items       *items   `json:"items,omitempty"`
}

type items struct {
	Type string `json:"type,omitempty"`
	Ref  string `json:"$ref,omitempty"`
}

type definition struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Properties  map[string]property `json:"properties"`
	Required    []string            `json:"required,omitempty"`
}

func main() {
	schemas := []struct {
		path   string
		schema jsonSchema
	}{
		{hookInputSchemaPath, generateHookInputSchema()},
		{decisionSchemaPath, generateDecisionSchema()},
	}

	for _, s := range schemas {
		data, err := json.MarshalIndent(s.schema, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal schema: %v\n", err)
			os.Exit(1)
		}

		data = append(data, '\n')

		if err := os.WriteFile(s.path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema file: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Schema written to %s\n", s.path)
	}
}

func generateHookInputSchema() jsonSchema {
	schema := jsonSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          hookInputSchemaID,
		Title:       "Bulwark Hook Input",
		Description: "The mutation context bulwark reads on stdin when invoked by a host hook.",
		Type:        "object",
		Properties:  make(map[string]property),
	}

	schema.Required = reflectProperties(reflect.TypeOf(check.Context{}), schema.Properties)

	schema.Properties["eventPhase"] = property{
		Type:        "string",
		Description: "Lifecycle phase of the mutation.",
		Enum:        []string{string(check.PhasePre), string(check.PhasePost)},
	}

	return schema
}

func generateDecisionSchema() jsonSchema {
	schema := jsonSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          decisionSchemaID,
		Title:       "Bulwark Decision",
		Description: "The final decision bulwark reports for one evaluated mutation.",
		Type:        "object",
		Properties:  make(map[string]property),
		Defs:        make(map[string]definition),
	}

	schema.Required = reflectProperties(reflect.TypeOf(tui.DecisionView{}), schema.Properties)

	schema.Properties["runId"] = property{
		Type:   "string",
		Format: "uuid",
	}
	schema.Properties["verdict"] = property{
		Type:        "string",
		Description: "The aggregate verdict for the mutation.",
		Enum:        []string{string(check.StatusAllow), string(check.StatusBlock)},
	}
	schema.Properties["fallbackTierUsed"] = property{
		Type:        "string",
		Description: "Degraded execution tier used, none when the parallel tier completed.",
		Enum:        []string{"none", "sequential", "emergency"},
	}
	schema.Properties["elapsed"] = property{
		Type:        "integer",
		Description: "Total run duration in nanoseconds.",
	}
	schema.Properties["checks"] = property{
		Type:  "array",
		Items: &items{Ref: "#/$defs/check_result"},
	}
	schema.Properties["diffs"] = property{
		Type:  "array",
		Items: &items{Ref: "#/$defs/diff"},
	}

	checkResult := structToDefinition(
		reflect.TypeOf(tui.CheckResultView{}),
		"Result reported by a single check.",
	)
	checkResult.Properties["status"] = property{
		Type:        "string",
		Description: "Outcome the check reported.",
		Enum: []string{
			string(check.StatusAllow),
			string(check.StatusBlock),
			string(check.StatusWarn),
			string(check.StatusModify),
		},
	}
	checkResult.Properties["failureReason"] = property{
		Type:        "string",
		Description: "Why the check did not complete normally.",
		Enum: []string{
			string(check.FailureNone),
			string(check.FailureError),
			string(check.FailureTimeout),
		},
	}
	checkResult.Properties["elapsed"] = property{
		Type:        "integer",
		Description: "Check wall time in nanoseconds.",
	}
	schema.Defs["check_result"] = checkResult

	schema.Defs["diff"] = structToDefinition(
		reflect.TypeOf(tui.DiffView{}),
		"Unified diff of one proposed content modification.",
	)

	return schema
}

// reflectProperties fills props from a struct's JSON-tagged fields and
// returns the names of the fields without omitempty.
func reflectProperties(t reflect.Type, props map[string]property) []string {
	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		props[name] = fieldToProperty(field)

		if !strings.Contains(opts, "omitempty") {
			required = append(required, name)
		}
	}

	return required
}

func parseJSONTag(tag string) (string, string) {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	opts := ""
	if len(parts) > 1 {
		opts = parts[1]
	}
	return name, opts
}

func fieldToProperty(field reflect.StructField) property {
	prop := property{}

	switch field.Type {
	case reflect.TypeOf(time.Time{}):
		prop.Type = "string"
		prop.Format = "date-time"
	default:
		switch field.Type.Kind() {
		case reflect.String:
			prop.Type = "string"
		case reflect.Int, reflect.Int64:
			prop.Type = "integer"
		case reflect.Bool:
			prop.Type = "boolean"
		case reflect.Slice:
			prop.Type = "array"
			if field.Type.Elem().Kind() == reflect.String {
				prop.Items = &items{Type: "string"}
			}
		}
	}

	return prop
}

func structToDefinition(t reflect.Type, desc string) definition {
	def := definition{
		Type:        "object",
		Description: desc,
		Properties:  make(map[string]property),
	}

	def.Required = reflectProperties(t, def.Properties)

	return def
}
