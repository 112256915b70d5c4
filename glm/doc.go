// Package glm fits binary-outcome generalized linear models by maximum
// likelihood, with logit and probit link functions.
package glm
