// Package glfm is the observation layer of a general latent feature model
// for heterogeneous data.
//
// A dataset is an N×D matrix whose columns each have one of five types
// (real, positive real, categorical, ordinal, count). All columns share an
// N×K latent feature matrix Z; column d is generated from the scores
// Z·B[d,:,r] through the link function of its type (see package link).
//
// The package owns everything around the posterior sampler:
//
//   - Resolve fills a partial Params with defaults and validates it.
//   - Model.Infer normalises the data (missing sentinel, label renumbering,
//     external transforms), hands feature-major arrays to an Engine and
//     unpacks its draws into a LatentState.
//   - ComputeMAP decodes point estimates for query feature vectors.
//   - ComputePDF evaluates the posterior predictive over a support grid.
//   - Model.Complete imputes every missing cell.
//   - FeaturePatterns summarises the distinct rows of a binary Z.
//
// The sampler itself is behind the Engine interface; package ridge provides
// a deterministic reference implementation.
package glfm
