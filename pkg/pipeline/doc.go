// Package pipeline drives a resumable conversion run.
//
// A run loads the checkpoint, scans the content root and walks the
// discovered inputs in fixed-size batches. Inputs listed in the checkpoint
// are skipped; inputs whose AVIF and WebP outputs both exist are recorded
// from disk without encoding; everything else is handed to the worker pool,
// which encodes each format independently. After every batch the
// checkpoint is rewritten, and a results snapshot is published every few
// batches that encoded something. A completed run publishes the final
// results and removes the checkpoint.
//
// Cancelling the run context stops the run at the next batch boundary;
// encoders already running finish first.
package pipeline
