// Package dynamo provides the primitives shared by the particle cloud packages.
//
// The package defines the small value types and sentinel errors every other
// package speaks in:
//
//   - [Vec3]: a point or offset in world units
//   - [Color]: the red/green/blue triple stored per particle
//   - domain errors such as [ErrMalformedLandmarks] and [ErrUnknownTemplate]
//   - [ParallelFor]: chunked fork/join over a particle range
//
// # Example
//
//	p := dynamo.Vec3{X: 1, Y: 2, Z: 3}
//	p = p.Lerp(dynamo.Vec3{}, 0.04)
//
// # Thread Safety
//
// All types are plain values and safe to copy between goroutines.
// ParallelFor callers must keep chunks writing disjoint indices.
package dynamo
