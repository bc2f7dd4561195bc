// Package stats computes derived statistics from cached collections. Every
// function is pure and cheap enough to call on each render.
package stats
