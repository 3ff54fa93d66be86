// Package storage models the energy stores of the vehicle: a large, slow
// battery and a small, fast capacitor. Each model tracks its charge,
// current, temperature and efficiency and keeps a per-period history of
// them. Models are mutable; Clone returns a fully independent copy.
package storage
