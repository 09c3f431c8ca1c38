package challengequeue

import "github.com/riverqueue/river"

// QueueName is the River queue that carries challenge jobs.
const QueueName = "challenge"

// ReleaseTimedChallengesJob opens every timed challenge whose release time has passed.
type ReleaseTimedChallengesJob struct {
	DryRun bool `json:"dry_run"`
}

// Kind returns the job type identifier for River
func (ReleaseTimedChallengesJob) Kind() string { return "release_timed_challenges" }

// InsertOpts routes the job to the challenge queue.
func (ReleaseTimedChallengesJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueName}
}

// JobInfo represents information about a release job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
