// Package gitchange lists files touched since a git ref, for incremental
// re-rendering of editable documents.
package gitchange

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ChangedFiles runs git diff and returns the paths changed since baseRef,
// relative to the repository root.
func ChangedFiles(baseRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", baseRef)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameOnly(output), nil
}

func parseNameOnly(output []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var paths []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
