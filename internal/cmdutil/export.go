package cmdutil

import (
	"encoding/json"
	"sort"

	"github.com/bitrise-io/metro-cli/internal/bitrise"
	"github.com/bitrise-io/metro-cli/internal/output"
)

// ExportArtifact writes v as indented JSON to the Bitrise deploy directory.
// Failures are reported as warnings; exporting never fails a command.
func ExportArtifact(filename string, v interface{}, out *output.Writer) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		out.Warning("failed to marshal %s: %v", filename, err)
		return
	}

	path, err := bitrise.WriteArtifact(filename, append(data, '\n'))
	if err != nil {
		out.Warning("failed to export %s: %v", filename, err)
		return
	}

	out.Info("Exported to: %s", path)
}

// ExportEnvVars exports key-value pairs as Bitrise environment variables via
// envman, in key order.
func ExportEnvVars(vars map[string]string, out *output.Writer) {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ok, err := bitrise.ExportEnvVar(key, vars[key])
		switch {
		case err != nil:
			out.Warning("failed to export %s: %v", key, err)
		case ok:
			out.Info("Exported %s", key)
		default:
			output.Debug("envman not found, skipping export", "key", key)
		}
	}
}
