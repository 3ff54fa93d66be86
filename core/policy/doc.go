// Package policy contains the control policies that split each sample's
// demand between the battery and the capacitor.
//
// A policy receives private clones of the storage models at BeginTrip and
// may mutate them freely; the simulation scores its decisions on separate
// ground-truth models.
package policy
