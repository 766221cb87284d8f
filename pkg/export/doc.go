// Package export writes a selected slice set to disk.
//
// An [Exporter] decodes the source image once, crops every rectangle of the
// selection in order and writes it as "<Name>.png" into the output
// directory. When every crop succeeded it finishes with an "atlas.json"
// manifest describing exactly the exported subset.
//
// The first failing crop stops the export: files already written stay on
// disk, later rectangles are never attempted, and no manifest is written.
// An "atlas.json" in the output directory therefore means the export that
// wrote it completed.
//
// # Write Modes
//
// [ModeDirect] creates each file in place and overwrites whatever was there.
// [ModeAtomic] writes to a temporary file in the same directory and renames
// it over the destination, so a crash never leaves a truncated PNG behind.
// Neither mode detects two slices sharing a name; the later one wins.
//
// # Usage
//
//	exp := export.New(export.WithMode(export.ModeAtomic), export.WithLogger(logger))
//	n, err := exp.Export(ctx, "sheet.png", subset, "out/")
package export
