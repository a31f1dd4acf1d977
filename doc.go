// Package graphcalc resolves textual relations between x and y into
// drawable curves.
//
// A relation such as "x^2 + y^2 = 25" is parsed when it is added and solved
// once, on the background worker, the first time it is drawn. Each frame the
// engine samples the explicit branches over the
// current window at a density chosen from the window span, splitting runs
// at poles, non-real values and the viewport edge. Relations with no
// explicit form are approximated on a coarse grid and flagged as low
// resolution.
//
// Design goals:
//   - Math-space output only; projection is the caller's business
//   - Pan and zoom never resample
//   - One background worker; a bad relation never stalls the others
//   - JSON tool interface for agent backends
package graphcalc
