// Package pipeline runs URL checks as a sequence of steps.
//
// A check passes a CheckReport through feature extraction, classification
// and, optionally, a reputation lookup. Each stage is a Step that receives
// the current report and fills in its part.
//
// The pipeline gives every stage the same logging, error recording and
// cancellation handling. BatchProcessor runs many checks concurrently
// with errgroup and a concurrency limit.
package pipeline
