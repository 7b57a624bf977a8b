// Package schema publishes the JSON schema of the report format.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/ppiankov/omen/internal/model"
)

// ID identifies the report schema
const ID = "https://github.com/ppiankov/omen/schema/report.json"

// ReportSchema returns the indented JSON schema for model.Report
func ReportSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	schema := reflector.Reflect(&model.Report{})
	schema.ID = jsonschema.ID(ID)
	schema.Title = "Omen report"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
