package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

// Render prints a human-readable summary of the report to the terminal.
// This is a downstream view of the data model: nothing here feeds back
// into the Report.
func (r *Report) Render() {
	for _, pair := range r.Pairs {
		renderPair(pair)
	}

	fmt.Println()
	if r.Consistent() {
		pterm.Success.Printf("%d/%d pairs consistent across %d invocations\n",
			r.Summary.Consistent, r.Summary.Pairs, r.Summary.Invocations)
	} else {
		pterm.Error.Printf("%d/%d pairs inconsistent (%d invocations, %d errors)\n",
			r.Summary.Inconsistent, r.Summary.Pairs, r.Summary.Invocations, r.Summary.Errors)
	}

	if impls := r.ImplementationsWithErrors(); len(impls) > 0 {
		pterm.Warning.Printf("implementations with errors: %s\n", strings.Join(impls, ", "))
	}
}

func renderPair(pair PairResult) {
	label := fmt.Sprintf("%s [%s]", pair.File, pair.Algorithm)

	switch {
	case !pair.Inconsistent:
		pterm.Success.Printf("%s: %d implementations agree on %d values\n",
			label, groupSize(pair), pair.Values)
	case len(pair.Candidates) == 0:
		pterm.Error.Printf("%s: no implementation supports this algorithm\n", label)
	case len(pair.Groups) == 0:
		pterm.Error.Printf("%s: all %d implementations failed\n", label, len(pair.Candidates))
	default:
		pterm.Error.Printf("%s: %d disagreeing digest groups\n", label, len(pair.Groups))
		for _, group := range pair.Groups {
			pterm.Info.Printf("  %s:\n", strings.Join(group.Implementations, ", "))
			for _, line := range strings.Split(group.Fingerprint, "\n") {
				pterm.Info.Printf("    %s\n", line)
			}
		}
	}

	names := make([]string, 0, len(pair.Errors))
	for name := range pair.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		invErr := pair.Errors[name]
		pterm.Warning.Printf("  %s: %s%s\n", name, invErr.Kind, errorDetail(invErr))
	}
}

func groupSize(pair PairResult) int {
	if len(pair.Groups) == 0 {
		return 0
	}
	return len(pair.Groups[0].Implementations)
}

func errorDetail(invErr InvocationError) string {
	switch invErr.Kind {
	case "process_error":
		detail := fmt.Sprintf(" (exit %d)", invErr.ExitCode)
		if stderr := strings.TrimSpace(invErr.Stderr); stderr != "" {
			detail += ": " + firstLine(stderr)
		}
		return detail
	default:
		if invErr.Reason != "" {
			return ": " + invErr.Reason
		}
		return ""
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
