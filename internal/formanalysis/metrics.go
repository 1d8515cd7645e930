package formanalysis

import "github.com/swanstudios/formsight/internal/sessions"

// Metrics is the per-frame form assessment produced by the Analyzer. The
// struct lives in the sessions package, where each computed value is recorded;
// this alias keeps the analysis API self-contained for callers.
type Metrics = sessions.Metrics
