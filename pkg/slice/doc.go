// Package slice provides the data model shared by the slicers and the exporter.
//
// # Overview
//
// A [Set] describes one spritesheet: where it came from, how large it is, and
// an ordered list of [Rect] values, each naming a rectangular sub-image. The
// order is meaningful. Auto-detected sets are in discovery order (row-major
// order of the first pixel seen of each sprite); grid sets are in row-major
// cell order.
//
// Sets are built once by a slicer and treated as read-only afterwards. Picking
// the rectangles to export produces a new Set via [Set.Subset] or
// [Set.SubsetFunc]; the receiver is never modified.
//
// # Selection
//
// [ParseSelection] turns a selection expression such as "0,2,5-7" or "all"
// into indices suitable for [Set.Subset]:
//
//	idx, err := slice.ParseSelection("0-3,8", set.Len())
//	subset, err := set.Subset(idx)
//
// # Manifest
//
// The manifest ([ManifestName], "atlas.json") is the pretty-printed JSON form
// of a Set. Field names are fixed (SourcePath, ImageWidth, ImageHeight, Slices
// with X, Y, Width, Height, Name) so the file is interchangeable with other
// tools that read the same layout. Use [WriteManifest] / [ReadManifest] for
// streams and [ExportManifest] / [ImportManifest] for files. Reading a
// manifest validates every rectangle against the recorded image size.
package slice
