package runner

import (
	"fmt"
	"sort"
	"strings"
)

const reportSeparator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"

// FormatRunReport formats run outcomes for user display, grouped
// package → version → platform. Skipped platforms are folded into a
// single trailing line per version.
func FormatRunReport(outcomes []Outcome) string {
	var sb strings.Builder
	// Pre-allocate for typical report size (header + entries + summary)
	sb.Grow(1024 + len(outcomes)*128)

	sb.WriteString("\n" + reportSeparator)
	sb.WriteString("RUN REPORT\n")
	sb.WriteString(reportSeparator + "\n")

	if len(outcomes) == 0 {
		sb.WriteString("No units found.\n\n")
		sb.WriteString(reportSeparator)
		return sb.String()
	}

	for _, pkg := range groupOutcomes(outcomes) {
		sb.WriteString(fmt.Sprintf("%s: %s (%d %s)\n",
			pkg.status.Symbol(), pkg.name, len(pkg.versions), plural(len(pkg.versions), "version")))

		for _, ver := range pkg.versions {
			sb.WriteString(fmt.Sprintf("    %s\n", ver.label))
			for _, o := range ver.attempted {
				sb.WriteString(fmt.Sprintf("        %s: %s %s\n", o.Status.Symbol(), o.Platform, o.Message))
			}
			if len(ver.skipped) > 0 {
				sb.WriteString(fmt.Sprintf("        skipped: %s\n", strings.Join(ver.skipped, ", ")))
			}
		}
	}

	counts := make(map[Status]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}

	sb.WriteString("\n" + reportSeparator)
	if counts[StatusFailed] == 0 {
		sb.WriteString("SUMMARY: no failures ✓\n")
	} else {
		sb.WriteString(fmt.Sprintf("SUMMARY: %d of %d units failed\n", counts[StatusFailed], len(outcomes)))
	}

	var parts []string
	if counts[StatusSucceeded] > 0 {
		parts = append(parts, fmt.Sprintf("%d succeeded", counts[StatusSucceeded]))
	}
	if counts[StatusFailed] > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", counts[StatusFailed]))
	}
	if counts[StatusSkipped] > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", counts[StatusSkipped]))
	}
	sb.WriteString("  " + strings.Join(parts, ", ") + "\n")
	sb.WriteString(reportSeparator)

	return sb.String()
}

type packageGroup struct {
	name     string
	status   Status
	versions []versionGroup
}

type versionGroup struct {
	label     string
	attempted []Outcome // succeeded and failed, one line each
	skipped   []string  // platforms folded into one line
}

// groupOutcomes arranges outcomes into the package → version → platform
// tree, sorted at every level, with aggregate statuses rolled up.
func groupOutcomes(outcomes []Outcome) []packageGroup {
	byPackage := make(map[string]map[string][]Outcome)
	for _, o := range outcomes {
		if byPackage[o.Name] == nil {
			byPackage[o.Name] = make(map[string][]Outcome)
		}
		byPackage[o.Name][o.Version] = append(byPackage[o.Name][o.Version], o)
	}

	names := make([]string, 0, len(byPackage))
	for name := range byPackage {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]packageGroup, 0, len(names))
	for _, name := range names {
		byVersion := byPackage[name]

		versions := make([]string, 0, len(byVersion))
		for version := range byVersion {
			versions = append(versions, version)
		}
		sort.Strings(versions)

		pkg := packageGroup{name: name}
		var pkgStatuses []Status
		for _, version := range versions {
			group := byVersion[version]
			sort.Slice(group, func(i, j int) bool { return group[i].Platform < group[j].Platform })

			ver := versionGroup{label: version}
			if version == "" {
				ver.label = "(none)"
			}
			for _, o := range group {
				if o.Status == StatusSkipped {
					ver.skipped = append(ver.skipped, o.Platform)
				} else {
					ver.attempted = append(ver.attempted, o)
				}
				pkgStatuses = append(pkgStatuses, o.Status)
			}
			pkg.versions = append(pkg.versions, ver)
		}
		pkg.status = aggregate(pkgStatuses)
		groups = append(groups, pkg)
	}
	return groups
}

// aggregate rolls statuses up: a failure dominates, a success beats
// skips, and an all-skipped group stays skipped.
func aggregate(statuses []Status) Status {
	agg := StatusSkipped
	for _, s := range statuses {
		if s == StatusFailed {
			return StatusFailed
		}
		if s == StatusSucceeded {
			agg = StatusSucceeded
		}
	}
	return agg
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
