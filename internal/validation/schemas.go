package validation

import (
	"embed"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Document names for the data files the toolchain understands.
const (
	DocumentSiteConfig = "site-config.json"
	DocumentOfferings  = "services.json"
	DocumentPages      = "pages.json"
)

var schemaFiles = map[string]string{
	DocumentSiteConfig: "schemas/site-config.schema.json",
	DocumentOfferings:  "schemas/services.schema.json",
	DocumentPages:      "schemas/pages.schema.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileAll() {
	compiled = make(map[string]*jsonschema.Schema, len(schemaFiles))
	for document, path := range schemaFiles {
		source, err := schemaFS.ReadFile(path)
		if err != nil {
			compileErr = fmt.Errorf("%w: read %s: %v", ErrSchemaInvalid, path, err)
			return
		}
		schema, err := CompileSchema(path, source)
		if err != nil {
			compileErr = fmt.Errorf("compile %s: %w", path, err)
			return
		}
		compiled[document] = schema
	}
}

// DocumentSchema returns the compiled schema for one of the known data
// documents. Unknown documents return nil without error so callers can skip
// files the toolchain does not own.
func DocumentSchema(document string) (*jsonschema.Schema, error) {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return nil, compileErr
	}
	return compiled[document], nil
}

// ValidateDataDocument validates the raw contents of a known data document.
func ValidateDataDocument(document string, raw []byte) error {
	schema, err := DocumentSchema(document)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}
	return ValidateRaw(schema, raw)
}
