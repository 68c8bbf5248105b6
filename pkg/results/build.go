package results

import (
	"megrep/pkg/paths"
	"megrep/pkg/storage"
)

// Outcome is what an encoding pass reports for one format
type Outcome struct {
	Output  string
	Success bool
}

// Builder assembles ConversionResults from encoder outcomes and the files
// left on disk
type Builder struct {
	resolver *paths.Resolver
}

// NewBuilder creates a builder that renders paths through resolver
func NewBuilder(resolver *paths.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build records the result of encoding input. A format counts as
// successful only when its encoder succeeded and the output can be
// stat'ed; failed formats carry zero size and ratio. An unreadable input
// is recorded with size 0.
func (b *Builder) Build(input string, avif, webp Outcome) ConversionResult {
	originalSize := statSize(input)

	return ConversionResult{
		Original: b.original(input, originalSize),
		AVIF:     b.format(avif, originalSize),
		WebP:     b.format(webp, originalSize),
	}
}

// FromDisk synthesizes a successful result for an input whose outputs
// already exist. It reports false when either output is missing.
func (b *Builder) FromDisk(input string) (ConversionResult, bool) {
	out, err := b.resolver.OutputPaths(input)
	if err != nil {
		return ConversionResult{}, false
	}

	avifSize, avifErr := storage.Size(out.AVIF)
	webpSize, webpErr := storage.Size(out.WebP)
	if avifErr != nil || webpErr != nil {
		return ConversionResult{}, false
	}

	originalSize := statSize(input)
	return ConversionResult{
		Original: b.original(input, originalSize),
		AVIF:     b.success(out.AVIF, avifSize, originalSize),
		WebP:     b.success(out.WebP, webpSize, originalSize),
	}, true
}

func (b *Builder) original(input string, originalSize int64) FileInfo {
	rel, err := b.resolver.DisplayRelative(input)
	if err != nil {
		rel = b.resolver.DisplayPath(input)
	}
	return FileInfo{
		Path:          rel,
		Size:          originalSize,
		SizeFormatted: FormatFileSize(originalSize),
	}
}

func (b *Builder) format(o Outcome, originalSize int64) FormatResult {
	if o.Success {
		if outSize, err := storage.Size(o.Output); err == nil {
			return b.success(o.Output, outSize, originalSize)
		}
	}
	return FormatResult{
		Path:          b.resolver.DisplayPath(o.Output),
		Size:          0,
		SizeFormatted: FormatFileSize(0),
		Success:       false,
	}
}

func (b *Builder) success(output string, outSize, originalSize int64) FormatResult {
	return FormatResult{
		Path:             b.resolver.DisplayPath(output),
		Size:             outSize,
		SizeFormatted:    FormatFileSize(outSize),
		CompressionRatio: CompressionRatio(originalSize, outSize),
		Success:          true,
	}
}

func statSize(path string) int64 {
	s, err := storage.Size(path)
	if err != nil {
		return 0
	}
	return s
}
