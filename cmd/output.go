package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// maxInputBytes caps SQL and mermaid files read from disk or stdin.
const maxInputBytes = 4 << 20

func writeData(cmd *cobra.Command, data json.RawMessage) error {
	out := cmd.OutOrStdout()
	if len(bytes.TrimSpace(data)) == 0 {
		_, err := fmt.Fprintln(out, "null")
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	_, err := fmt.Fprintln(out, pretty.String())
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", path, maxInputBytes)
	}

	return string(data), nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
