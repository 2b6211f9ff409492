// Package eligibility decides when an asset has accumulated enough state
// for a project to be created automatically.
package eligibility

import (
	"fmt"

	"reeltrack/internal/production"
)

// Decision is the outcome of an eligibility evaluation. Reason is recorded
// on auto-created projects for later audit.
type Decision struct {
	Eligible bool
	Reason   string
}

// Evaluate checks whether an asset qualifies for automatic project
// creation: production has started, at least minCredits people are
// actively credited, and no project exists yet. The check is monotonic in
// its inputs; adding credits or starting production never revokes
// eligibility. It is evaluated against a transactional snapshot, so the
// decision cannot race with concurrent edits.
func Evaluate(snap production.CreationSnapshot, minCredits int) Decision {
	if snap.HasProject {
		return Decision{Reason: "project already exists"}
	}
	if snap.Asset == nil || snap.Asset.Status != production.AssetStatusInProgress {
		return Decision{Reason: "asset not in progress"}
	}

	active := 0
	for _, credit := range snap.Credits {
		if credit.DeletedAt == nil {
			active++
		}
	}
	if active < minCredits {
		return Decision{Reason: fmt.Sprintf("%d of %d required credits", active, minCredits)}
	}

	return Decision{
		Eligible: true,
		Reason:   fmt.Sprintf("asset in progress with %d active credits", active),
	}
}
