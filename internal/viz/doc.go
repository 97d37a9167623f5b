// Package viz renders the particle cloud in a terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: the interactive view, driven by a tracker or the keyboard
//   - [Canvas]: Braille-based pixel canvas with per-cell tint
//   - [Camera]: perspective projection shared with the SVG and sprite renderers
//
// # Key Bindings
//
//	N       - Pinch, advancing the template
//	G       - Toggle grasp
//	Arrows  - Move the keyboard hand
//	+/-     - Zoom
//	Space   - Pause/Resume
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
