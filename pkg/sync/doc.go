// ABOUTME: Broadcast clock package
// ABOUTME: Keeps every station locked to a shared wall-clock timeline
// Package sync maps wall-clock time onto a looping station track.
//
// Every station plays as if it had been broadcasting since midnight. The
// target position is the seconds since local midnight plus a shared user
// offset, wrapped into the track length. A Synchronizer compares a media
// handle against that target and seeks only when the drift exceeds its
// threshold, so a healthy handle plays undisturbed.
//
// Example:
//
//	session, _ := sync.NewSession(store)
//	s := sync.NewSynchronizer(session, sync.SystemClock{}, sync.DefaultDriftThreshold)
//	report, err := s.Sync(&state, handle, true)
//	fmt.Println(report)
package sync
