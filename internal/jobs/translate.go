package jobs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// TranslateTextArgs are the arguments for a translate_text job. The worker
// stores its result in the translation cache.
type TranslateTextArgs struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

func (TranslateTextArgs) Kind() string { return "translate_text" }

func (args TranslateTextArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
		MaxAttempts: 3,
	}
}

// Queue enqueues translation jobs on a River client.
type Queue struct {
	client *river.Client[pgx.Tx]
}

func NewQueue(client *river.Client[pgx.Tx]) *Queue {
	return &Queue{client: client}
}

// EnqueueTranslation inserts a translate_text job and returns its id. A
// duplicate of a job still in flight returns the existing job's id.
func (q *Queue) EnqueueTranslation(ctx context.Context, text, target string) (int64, error) {
	res, err := q.client.Insert(ctx, TranslateTextArgs{Text: text, Target: target}, nil)
	if err != nil {
		return 0, fmt.Errorf("enqueueing translation: %w", err)
	}
	return res.Job.ID, nil
}
