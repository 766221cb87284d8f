// Package slicer turns a spritesheet into a [slice.Set].
//
// # Auto Mode
//
// [Auto] finds sprites by connected-component analysis: every maximal
// 4-connected region of pixels whose alpha is at least the threshold becomes
// one bounding rectangle, grown by a padding margin and clamped to the image.
// Regions smaller than the minimum size are dropped. The scan is row-major and
// each pixel is examined exactly once, so the work is O(width*height) no
// matter how many sprites the sheet holds.
//
// Padding is applied per sprite. Two sprites closer than twice the padding
// produce overlapping rectangles; they are reported as found and not merged.
//
// # Grid Mode
//
// [Grid] cuts the image into equal cells after removing a margin from every
// edge. The usable area must divide evenly by the cell size; otherwise a
// [*GridError] reports the offending numbers.
//
// Both slicers are pure: they read their input, allocate their own working
// memory and return a new Set that the caller owns.
package slicer
