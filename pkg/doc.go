// Package pkg holds the spriteslicer libraries.
//
// # Overview
//
// Spriteslicer cuts a spritesheet into individual sprites. It finds the
// sprites either by flood-filling opaque regions (auto mode) or by tiling a
// uniform grid (grid mode), and exports a chosen subset as one PNG per
// sprite plus an atlas.json manifest.
//
// # Architecture
//
// The data flow through spriteslicer:
//
//	spritesheet file
//	       ↓
//	  [pixel] package (decode to an RGBA8 buffer)
//	       ↓
//	  [slicer] package (Auto or Grid)
//	       ↓
//	  [slice] package (slice set, selection, manifest)
//	       ↓
//	  [export] package (crop + PNG + atlas.json)
//
// [pipeline] runs these stages for the CLI and the HTTP server, caching auto
// results through [cache]. [errors] defines the error codes every stage
// returns, [config] loads the TOML settings file, and [observability]
// exposes hooks for metrics.
//
// # Quick Start
//
//	buf, _ := pixel.Decode("sheet.png")
//	set, _ := slicer.Auto(ctx, buf, slicer.DefaultAutoOptions())
//	subset, _ := set.Subset([]int{0, 2})
//	n, _ := export.New().Export(ctx, "sheet.png", subset, "out")
package pkg
