// Package layout turns an extracted release payload into the standardized
// installable prefix shape: wrapper directories flattened away, executables
// collected under bin/ with version suffixes stripped, and the remaining
// payload sorted into the reserved structural directories or misc/.
//
// The pipeline runs four stages against a unit's source directory and
// target prefix:
//
//  1. locate the input artifact and unpack it into the prefix
//  2. flatten single-directory nesting until the payload shape is canonical
//  3. classify top-level entries into bin/, misc/, or a reserved directory
//  4. strip version suffixes from executables in bin/
//
// Each stage leaves the prefix in a consistent on-disk state, so a failure
// reports exactly which stage gave up without corrupting earlier work.
package layout
