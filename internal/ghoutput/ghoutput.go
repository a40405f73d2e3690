// Package ghoutput writes step outputs and the job summary of a GitHub Actions run.
package ghoutput

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Write appends key=value outputs to the GITHUB_OUTPUT file at path. An empty path
// means the command is not running inside Actions and nothing is written.
func Write(path string, values map[string]string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open github output: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := sanitize(values[key])
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
			return fmt.Errorf("write github output: %w", err)
		}
	}
	return nil
}

// AppendSummary appends markdown to the GITHUB_STEP_SUMMARY file at path.
func AppendSummary(path, markdown string) error {
	path = strings.TrimSpace(path)
	if path == "" || markdown == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open step summary: %w", err)
	}
	defer func() { _ = f.Close() }()

	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	if _, err := f.WriteString(markdown); err != nil {
		return fmt.Errorf("write step summary: %w", err)
	}
	return nil
}

func sanitize(value string) string {
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "\r", "%0D")
	value = strings.ReplaceAll(value, "\n", "%0A")
	return value
}
