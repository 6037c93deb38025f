// Package multitools provides the shared response envelope and structured
// error model used by every tool in the multi-tools server.
//
// Tools are deterministic, side-effect-free JSON transformations. They share
// nothing at runtime except this envelope and the error-code taxonomy; the
// actual algorithms live in their own packages (schema, validate, diff,
// mapping, textnorm, gate, enumreg, trace, contract).
package multitools
