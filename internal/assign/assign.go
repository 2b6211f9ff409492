// Package assign routes credited people onto the tasks of a project. The
// routing is heuristic on purpose: it fills obvious gaps and leaves
// anything ambiguous unassigned for a human to resolve.
package assign

import (
	"sort"
	"strings"

	"reeltrack/internal/production"
)

// Bucket groups credits by the kind of work they can take on.
type Bucket string

const (
	BucketScriptwriter Bucket = "scriptwriter"
	BucketPerformer    Bucket = "performer"
	BucketProducer     Bucket = "producer"
	BucketReviewer     Bucket = "reviewer"
	BucketMonitor      Bucket = "monitor"
	BucketOther        Bucket = "other"
)

// Classify places a credit into a work bucket. The person kind decides
// first; only staff credits fall through to role-label keywords.
func Classify(c production.Credit) Bucket {
	switch c.Person.Kind {
	case production.PersonScriptwriter:
		return BucketScriptwriter
	case production.PersonVoiceArtist, production.PersonSLInterpreter:
		return BucketPerformer
	case production.PersonStaff:
		role := strings.ToLower(c.RoleLabel)
		switch {
		case strings.Contains(role, "produc") || strings.Contains(role, "coordinat") || strings.Contains(role, "manager"):
			return BucketProducer
		case strings.Contains(role, "review") || strings.Contains(role, "qc") || strings.Contains(role, "quality"):
			return BucketReviewer
		case strings.Contains(role, "monitor") || strings.Contains(role, "supervis"):
			return BucketMonitor
		default:
			return BucketOther
		}
	default:
		return BucketOther
	}
}

// taskBucket infers which bucket a task's main assignee should come from
// based on the task name.
func taskBucket(name string) Bucket {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "script", "write", "draft", "translat", "caption", "transcript"):
		return BucketScriptwriter
	case containsAny(lower, "record", "narrat", "voice", "sign", "interpret", "perform"):
		return BucketPerformer
	default:
		return BucketProducer
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// Assign fills unassigned credit slots on each task: the main assignee
// from the bucket inferred from the task name, the reviewer and monitor
// slots from their dedicated buckets when the task requires those tracks.
// Primary credits win over others, then sequence order. Slots that already
// hold a credit are never rewritten, so re-running after a credit change
// only fills gaps. An empty bucket leaves its slot unassigned.
func Assign(tasks []production.Task, credits []production.Credit) {
	buckets := make(map[Bucket][]production.Credit)
	for _, credit := range credits {
		if credit.DeletedAt != nil {
			continue
		}
		bucket := Classify(credit)
		buckets[bucket] = append(buckets[bucket], credit)
	}
	for bucket := range buckets {
		sort.SliceStable(buckets[bucket], func(i, j int) bool {
			a, b := buckets[bucket][i], buckets[bucket][j]
			if a.Primary != b.Primary {
				return a.Primary
			}
			return a.Seq < b.Seq
		})
	}

	pick := func(bucket Bucket) *int64 {
		if len(buckets[bucket]) == 0 {
			return nil
		}
		id := buckets[bucket][0].ID
		return &id
	}

	for i := range tasks {
		t := &tasks[i]
		if t.AssignedCreditID == nil {
			t.AssignedCreditID = pick(taskBucket(t.TaskName))
		}
		if t.ReviewRequired && t.ReviewerCreditID == nil {
			t.ReviewerCreditID = pick(BucketReviewer)
		}
		if t.MonitoringRequired && t.MonitorCreditID == nil {
			t.MonitorCreditID = pick(BucketMonitor)
		}
	}
}
