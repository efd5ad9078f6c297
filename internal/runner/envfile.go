package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envFileName is the per-unit identity file consumed by downstream
// packaging tooling.
const envFileName = "env.sh"

// WriteEnvFile writes unitDir/env.sh declaring the unit's identity.
// The channel line is omitted when no channel is configured. The file
// is written atomically so a crashed run never leaves a partial one.
func WriteEnvFile(unit Unit, channel string) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("export PKG_NAME=%s\n", unit.Name))
	sb.WriteString(fmt.Sprintf("export PKG_VERSION=%s\n", unit.Version))
	sb.WriteString(fmt.Sprintf("export target_platform=%s\n", unit.Platform))
	if channel != "" {
		sb.WriteString(fmt.Sprintf("export TARGET_CHANNEL=%s\n", channel))
	}

	finalPath := filepath.Join(unit.Dir, envFileName)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename env file: %w", err)
	}
	return nil
}
