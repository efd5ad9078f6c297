package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Flatten collapses wrapper nesting at the top of prefix. Release archives
// commonly wrap their payload in a "{name}-{version}" directory, sometimes
// several levels deep; each round lifts the children of a lone top-level
// directory up one level.
//
// Flattening halts as soon as the payload shape is canonical: a top-level
// bin directory exists, the top level holds zero or multiple directories,
// or the lone directory is a reserved structural name. Loose files at the
// top level never influence the decision.
func Flatten(prefix string) error {
	for {
		wrapper, done, err := loneWrapper(prefix)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := unwrap(prefix, wrapper); err != nil {
			return err
		}
	}
}

// loneWrapper inspects the top level of prefix and returns the single
// unwrappable directory, or done=true when the shape is already canonical.
func loneWrapper(prefix string) (string, bool, error) {
	entries, err := os.ReadDir(prefix)
	if err != nil {
		return "", false, fmt.Errorf("read prefix: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}

	for _, dir := range dirs {
		if dir == BinDir {
			return "", true, nil
		}
	}
	if len(dirs) != 1 || IsReservedDir(dirs[0]) {
		return "", true, nil
	}
	return dirs[0], false, nil
}

// unwrap lifts every child of the wrapper directory into prefix and
// removes the emptied wrapper. The wrapper is renamed aside first so a
// child carrying the wrapper's own name can take its place.
func unwrap(prefix, wrapper string) error {
	aside, err := asideName(prefix, wrapper)
	if err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(prefix, wrapper), aside); err != nil {
		return fmt.Errorf("set wrapper aside: %w", err)
	}

	children, err := os.ReadDir(aside)
	if err != nil {
		return fmt.Errorf("read wrapper: %w", err)
	}
	for _, child := range children {
		dest := filepath.Join(prefix, child.Name())
		if _, err := os.Lstat(dest); err == nil {
			return fmt.Errorf("flatten %s: %s already exists at the top level", wrapper, child.Name())
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("check %s: %w", dest, err)
		}
		if err := os.Rename(filepath.Join(aside, child.Name()), dest); err != nil {
			return fmt.Errorf("lift %s: %w", child.Name(), err)
		}
	}

	if err := os.Remove(aside); err != nil {
		return fmt.Errorf("remove emptied wrapper: %w", err)
	}
	return nil
}

// asideName picks an unused temporary name for the wrapper within prefix.
func asideName(prefix, wrapper string) (string, error) {
	for i := 0; i < 100; i++ {
		name := filepath.Join(prefix, fmt.Sprintf("%s.unwrap-%d", wrapper, i))
		if _, err := os.Lstat(name); os.IsNotExist(err) {
			return name, nil
		} else if err != nil {
			return "", fmt.Errorf("check aside name: %w", err)
		}
	}
	return "", fmt.Errorf("no free aside name for %s", wrapper)
}
