// Package watch rebuilds a submission whenever its source changes.
//
// Local sources are watched with fsnotify and rebuilt after a quiet period.
// Repository sources are polled on a gocron schedule and rebuilt when the
// remote commit moves. Rebuilds never overlap; triggers that arrive during a
// build collapse into a single follow-up build.
package watch
