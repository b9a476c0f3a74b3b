// Package link implements the per-type observation models of a
// heterogeneous latent feature model.
//
// Each column of a dataset carries one of five data types. A Link built for
// a column turns latent scores (inner products of a latent feature vector
// with the column's weight slices) into either a point estimate in the
// observation domain or a density/mass over a support grid:
//
//	real (g)         x = μ + y/w                         Gaussian density
//	positive (p)     x = μ + softplus(y)/w               pushforward density
//	count (n)        x = ⌊μ + softplus(y)/w⌋             interval mass
//	categorical (c)  x = argmax_r y_r                    multinomial probit
//	ordinal (o)      x = level of y among thresholds θ   interval mass
//
// All types share the pseudo-observation noise y ~ N(s, s2Y+s2u).
package link
