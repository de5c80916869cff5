// Package opat reads OPAT containers — binary files holding scientific
// opacity lookup tables indexed by composition and state parameters — and
// answers piecewise-linear interpolation queries against them.
//
// # Quick start
//
//	f, err := opat.Open("GS98hz.opat")
//	if err != nil {
//		log.Fatal(err)
//	}
//	table, err := f.Interpolate("opacity", []float64{0.35, 0.02})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Open reads the entire file eagerly: every card is parsed, checksummed,
// and held in memory, and a Delaunay triangulation over the stored
// parameter vectors is built once up front. Nothing after Open touches
// disk, and the resulting *File is safe for concurrent queries.
//
// # Scope
//
// This package only reads. It does not write, append to, or otherwise
// mutate OPAT containers; that is left to producer tooling outside this
// module. It also does not stream over a network or support anything
// other than piecewise-linear interpolation — no quadratic or cubic
// fitting, and no extrapolation beyond the convex hull of stored
// parameter vectors.
package opat
