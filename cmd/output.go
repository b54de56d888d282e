package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// writeOutput renders v as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		// Round-trip through JSON so YAML keys match the JSON field names.
		data, err := json.Marshal(v)
		if err != nil {
			return eris.Wrap(err, "encode json")
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return eris.Wrap(err, "decode json")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "close yaml encoder")
	default:
		return eris.Errorf("unsupported format %q (want json or yaml)", format)
	}
}
