// Package prediction provides demand forecasts for control policies.
// Forecasts are optional: policies fall back to the current demand when no
// historical neighbour can be found.
package prediction
