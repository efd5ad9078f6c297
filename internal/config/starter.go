package config

import (
	"fmt"
	"os"
)

// starterTemplate is written by "prefab config init". Kept as literal
// text so the guiding comments survive; it must stay loadable by Load.
const starterTemplate = `# prefab configuration
# Packages listed under [[packages]] are repackaged by "prefab run".

[conda]
# Channel recorded in each unit's env file.
channel = "my-channel"

[verify]
# Artifact verification: off, auto, or required.
mode = "auto"
# minisign_key = "minisign.pub"
# pgp_keyring = "trusted.gpg"

# [[packages]]
# repository = "BurntSushi/ripgrep"
# name = "ripgrep"
# executables = ["rg"]
`

// WriteStarter writes the starter config to path, refusing to overwrite
// an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(starterTemplate), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
