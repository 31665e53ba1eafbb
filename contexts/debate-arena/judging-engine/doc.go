// Package judgingengine implements winner determination inside the
// debate-arena context.
//
// The module scores submissions on five weighted axes, aggregates by side,
// resolves ties through a quality cascade, and draws the final winner
// uniformly among the winning side's top three. Moderation verdicts enter
// only as an advisory appropriateness filter; insight text generation is a
// best-effort external call that never blocks a result.
package judgingengine
