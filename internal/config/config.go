package config

const (
	DefaultTimeZone   = "UTC"
	DefaultWindowDays = 30

	// Cron Job Constants
	DefaultOverdueSchedule  = "0 1 * * *"  // mark sent invoices overdue, daily 01:00
	DefaultSnapshotSchedule = "30 0 * * *" // snapshot user stats into the activity feed
	DefaultStreakSchedule   = "15 0 * * *" // reset habit streaks missed yesterday
	JobBatchSize            = 500
)
