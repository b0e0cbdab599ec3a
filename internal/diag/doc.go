// Package diag defines the diagnostic model shared by every stage of the rewrite.
//
// Diagnostic is the central record: severity, a numeric Code with a stable
// string form (LEX/SYN/OPT/ORD/CFG/EMT prefixes), a short message, the primary
// span, optional notes, optional suggested fixes and the class it belongs to.
//
// The code range doubles as the failure category reported to callers:
//
//   - LEX, SYN – the unit does not parse (ParseError);
//   - OPT – the marker or field() uses something outside the supported set;
//   - ORD – a field without a default follows one with a default;
//   - CFG – the options or declared members contradict each other;
//   - EMT – the generator produced something it cannot splice (internal defect).
//
// Stages emit through a Reporter; BagReporter collects into a Bag which supports
// sorting and deduplication. Rendering lives in internal/diagfmt.
package diag
