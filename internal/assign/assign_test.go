package assign

import (
	"testing"

	"reeltrack/internal/production"
)

func credit(id int64, kind production.PersonKind, role string, primary bool, seq int) production.Credit {
	return production.Credit{
		ID:        id,
		Person:    production.PersonRef{Kind: kind, ID: id * 10},
		RoleLabel: role,
		Primary:   primary,
		Seq:       seq,
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		credit production.Credit
		want   Bucket
	}{
		{credit(1, production.PersonScriptwriter, "describer", false, 1), BucketScriptwriter},
		{credit(2, production.PersonVoiceArtist, "narrator", false, 1), BucketPerformer},
		{credit(3, production.PersonSLInterpreter, "BSL interpreter", false, 1), BucketPerformer},
		{credit(4, production.PersonStaff, "Producer", false, 1), BucketProducer},
		{credit(5, production.PersonStaff, "Project Coordinator", false, 1), BucketProducer},
		{credit(6, production.PersonStaff, "QC Reviewer", false, 1), BucketReviewer},
		{credit(7, production.PersonStaff, "Quality Lead", false, 1), BucketReviewer},
		{credit(8, production.PersonStaff, "Monitoring Supervisor", false, 1), BucketMonitor},
		{credit(9, production.PersonStaff, "Intern", false, 1), BucketOther},
	}
	for _, tc := range cases {
		if got := Classify(tc.credit); got != tc.want {
			t.Errorf("Classify(%s %q) = %s, want %s", tc.credit.Person.Kind, tc.credit.RoleLabel, got, tc.want)
		}
	}
}

func TestAssignRoutesByTaskName(t *testing.T) {
	credits := []production.Credit{
		credit(1, production.PersonScriptwriter, "describer", false, 1),
		credit(2, production.PersonVoiceArtist, "narrator", false, 1),
		credit(3, production.PersonStaff, "producer", false, 1),
		credit(4, production.PersonStaff, "reviewer", false, 1),
	}
	tasks := []production.Task{
		{TaskName: "write description script", ReviewRequired: true},
		{TaskName: "record narration"},
		{TaskName: "package deliverables"},
	}

	Assign(tasks, credits)

	if tasks[0].AssignedCreditID == nil || *tasks[0].AssignedCreditID != 1 {
		t.Fatalf("script task assignee = %v, want credit 1", tasks[0].AssignedCreditID)
	}
	if tasks[0].ReviewerCreditID == nil || *tasks[0].ReviewerCreditID != 4 {
		t.Fatalf("script task reviewer = %v, want credit 4", tasks[0].ReviewerCreditID)
	}
	if tasks[1].AssignedCreditID == nil || *tasks[1].AssignedCreditID != 2 {
		t.Fatalf("recording task assignee = %v, want credit 2", tasks[1].AssignedCreditID)
	}
	if tasks[2].AssignedCreditID == nil || *tasks[2].AssignedCreditID != 3 {
		t.Fatalf("packaging task assignee = %v, want credit 3", tasks[2].AssignedCreditID)
	}
}

func TestAssignPrefersPrimaryThenSeq(t *testing.T) {
	credits := []production.Credit{
		credit(1, production.PersonVoiceArtist, "narrator", false, 1),
		credit(2, production.PersonVoiceArtist, "narrator", true, 3),
		credit(3, production.PersonVoiceArtist, "narrator", false, 2),
	}
	tasks := []production.Task{{TaskName: "record narration"}}
	Assign(tasks, credits)
	if *tasks[0].AssignedCreditID != 2 {
		t.Fatalf("assignee = %d, want primary credit 2", *tasks[0].AssignedCreditID)
	}

	// without a primary, lowest sequence wins
	credits[1].Primary = false
	tasks = []production.Task{{TaskName: "record narration"}}
	Assign(tasks, credits)
	if *tasks[0].AssignedCreditID != 1 {
		t.Fatalf("assignee = %d, want seq-1 credit 1", *tasks[0].AssignedCreditID)
	}
}

func TestAssignIsIdempotentAndFillsGapsOnly(t *testing.T) {
	existing := int64(99)
	tasks := []production.Task{
		{TaskName: "write description script", AssignedCreditID: &existing, ReviewRequired: true},
	}
	credits := []production.Credit{
		credit(1, production.PersonScriptwriter, "describer", false, 1),
		credit(4, production.PersonStaff, "reviewer", false, 1),
	}

	Assign(tasks, credits)
	if *tasks[0].AssignedCreditID != 99 {
		t.Fatalf("existing assignment overwritten: %d", *tasks[0].AssignedCreditID)
	}
	if tasks[0].ReviewerCreditID == nil || *tasks[0].ReviewerCreditID != 4 {
		t.Fatalf("reviewer gap not filled: %v", tasks[0].ReviewerCreditID)
	}
}

func TestAssignEmptyBucketLeavesUnassigned(t *testing.T) {
	tasks := []production.Task{
		{TaskName: "record narration", MonitoringRequired: true},
	}
	Assign(tasks, []production.Credit{
		credit(1, production.PersonScriptwriter, "describer", false, 1),
	})
	if tasks[0].AssignedCreditID != nil {
		t.Fatalf("assignee = %v, want nil with no performers", tasks[0].AssignedCreditID)
	}
	if tasks[0].MonitorCreditID != nil {
		t.Fatalf("monitor = %v, want nil with no monitors", tasks[0].MonitorCreditID)
	}
}

func TestAssignSkipsDeletedCredits(t *testing.T) {
	c := credit(1, production.PersonVoiceArtist, "narrator", true, 1)
	now := c.CreatedAt
	c.DeletedAt = &now
	tasks := []production.Task{{TaskName: "record narration"}}
	Assign(tasks, []production.Credit{c})
	if tasks[0].AssignedCreditID != nil {
		t.Fatal("deleted credit was assigned")
	}
}
