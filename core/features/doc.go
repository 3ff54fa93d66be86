// Package features turns telemetry samples into points of a fixed-dimension
// metric space and averages the ground-truth demand that followed similar
// historical samples.
package features
