package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// CreateFolder creates path and any missing parents.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", path, err)
	}
	return nil
}

// pretty print
func PrettyPrint(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error pretty printing: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
