// Package contestservice owns the debate contest lifecycle inside the
// debate-arena context.
//
// The module holds the Contest/Submission/WinnerRecord domain, the lifecycle
// scheduler worker that sweeps expired contests and spins up the next one,
// and read queries for the HTTP surface. Judging, topic generation,
// settlement, moderation, and rewards enter through ports so the scheduler
// stays a single sequential orchestration loop.
package contestservice
