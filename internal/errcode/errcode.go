// Package errcode holds the numeric codes carried by push notifications.
//
//   - 0: success
//   - 4xxx: recoverable, the job finished with a warning
//   - 5xxx: the job failed
package errcode

const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)
