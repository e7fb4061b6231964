package storage

// ConfigJSONSchema documents the runtime shape expected by storage providers.
// Runtime configuration validation compiles this schema so a bad catalog DSN
// fails fast instead of surfacing mid-command.
const ConfigJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageConfig",
  "type": "object",
  "required": ["driver", "dsn"],
  "properties": {
    "name": {
      "type": "string",
      "description": "Human readable identifier for the storage configuration"
    },
    "driver": {
      "type": "string",
      "enum": ["sqlite", "postgres"],
      "description": "Driver identifier understood by the catalog wiring"
    },
    "dsn": {
      "type": "string",
      "minLength": 1,
      "description": "Connection string or file path for the driver"
    },
    "readOnly": {
      "type": "boolean",
      "default": false
    },
    "options": {
      "type": "object",
      "description": "Driver specific options",
      "additionalProperties": true
    }
  },
  "additionalProperties": false
}
`
