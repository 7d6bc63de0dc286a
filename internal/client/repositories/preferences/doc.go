// Package preferences is the general (unencrypted) storage of the client. It
// holds the profile snapshot of the logged in user as JSON under
// common.UserKey, so a restart can show who is logged in without a network
// round trip.
//
// LoadProfile returns (nil, nil) when no snapshot is stored.
package preferences
