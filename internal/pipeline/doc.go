// Package pipeline runs the resolver over a batch of files: discovery,
// parallel per-file resolution, and the batch summary.
//
// Files are independent, so they are resolved in parallel (cfg.Workers at a
// time). Inside one file the probes still run strictly in fallback order.
// Reports come back in input order regardless of completion order.
package pipeline
