package template

// ConfigSchema is the JSON Schema a template configuration document must
// satisfy before it replaces the builtin set.
const ConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["templates"],
  "properties": {
    "templates": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["system_prompt"],
        "properties": {
          "role": {
            "type": "string"
          },
          "system_prompt": {
            "type": "string",
            "minLength": 1
          },
          "context_variables": {
            "type": "array",
            "items": { "type": "string" }
          },
          "max_tokens": {
            "type": "integer",
            "minimum": 1
          },
          "temperature": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "tools": {
            "type": "array",
            "items": { "type": "string" }
          }
        }
      }
    }
  }
}`
