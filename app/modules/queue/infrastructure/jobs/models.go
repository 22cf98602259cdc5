package queuejobs

// PurgeArchivedJob deletes archived rounds older than the retention window.
// It carries no arguments; the cutoff is computed when the job runs.
type PurgeArchivedJob struct{}

// Kind returns the job type identifier for River
func (PurgeArchivedJob) Kind() string { return "queue_purge_archived" }
