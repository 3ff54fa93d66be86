// Package simulation replays recorded trips against power-split policies.
//
// For every (policy, trip) pair the driver builds fresh ground-truth
// storage models, hands the policy private clones, and then for each sample
// asks the policy for an allocation, checks it against the ground-truth
// capacitor and applies it. A trip whose allocation cannot be realised is
// aborted and reported; the run carries on with the next trip.
package simulation
