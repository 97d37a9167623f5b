// Package shape maps a particle index and a template to the point that
// particle is drawn toward.
//
// Templates are fixed procedural rules:
//
//   - [Sphere]: radius 7 shell, also the fallback for unknown values
//   - [Heart]: flat parametric heart with z shimmer
//   - [Saturn]: radius 5 core plus a flattened, jittered ring
//   - [Fireworks]: a burst that re-rolls its radius every call
//
// A [Generator] owns the random source used for jitter, so a fixed seed
// reproduces the exact sequence of targets.
package shape
