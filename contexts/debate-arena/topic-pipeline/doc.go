// Package topicpipeline generates and deduplicates debate topics for new
// contests. It retries generation with progressively different strategies,
// validates structure, and rejects candidates too similar to recently
// completed contests.
package topicpipeline
