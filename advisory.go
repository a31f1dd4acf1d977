package graphcalc

import "strings"

// advisoryLog remembers which relation texts were already reported as
// partially evaluated, so each is surfaced once.
type advisoryLog struct {
	seen  map[string]bool
	order []string
}

func newAdvisoryLog() *advisoryLog { return &advisoryLog{seen: map[string]bool{}} }

// note records name and reports whether it is new.
func (a *advisoryLog) note(name string) bool {
	if a.seen[name] {
		return false
	}
	a.seen[name] = true
	a.order = append(a.order, name)
	return true
}

func (a *advisoryLog) all() []string {
	return append([]string(nil), a.order...)
}

// FormatAdvisory renders the user-facing message for names, or "" if there
// is nothing to report.
func FormatAdvisory(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "The following graphs could not be fully evaluated and are shown at low resolution: " +
		strings.Join(names, ", ")
}
