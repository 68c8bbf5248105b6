// Package encoder drives the external avifenc and cwebp binaries.
//
// The adapter owns argument construction and output directory creation;
// process execution goes through a Runner so tests can substitute a fake:
//
//	adapter := encoder.New(cfg.Formats, encoder.ExecRunner{}, log)
//	ok := adapter.Encode(ctx, paths.AVIF, "/data/contents/a/x.png", "/data/avif/a/x.avif")
//
// Encode never returns an error. Any non-zero exit, missing binary or
// directory failure is logged and reported as false.
package encoder
