// Package session owns the process-wide authentication state.
//
// A Manager is the only writer of the access token, the refresh token and the
// loading/refreshing/error flags. Mutating operations (Register, Login,
// Refresh, Logout, UpdateProfile, Restore) are serialized by one mutex, so a
// refresh's read-modify-write of the access token never interleaves with a
// concurrent login or logout. Readers (Snapshot, AccessToken, CurrentUser)
// take a separate read lock that is only held while state is copied, never
// across storage I/O.
//
// Tokens and the user registry are mirrored into a storage.Store so a
// session can be restored after a restart.
package session
