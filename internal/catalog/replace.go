package catalog

import (
	"fmt"
	"sort"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// PlanReplace diffs an incoming template batch against the currently active
// templates of one content type and produces the all-or-nothing write plan:
// rows whose (stage, order) key already exists become updates, new keys
// become inserts, and active rows absent from the batch are deactivated so
// existing projects keep referencing them.
//
// A duplicate (stage, order) key inside the batch rejects the whole batch.
func PlanReplace(contentType production.ContentType, existing, incoming []production.Template) (production.TemplateReplacePlan, error) {
	plan := production.TemplateReplacePlan{ContentType: contentType}

	seen := make(map[production.TemplateKey]struct{}, len(incoming))
	for _, tpl := range incoming {
		if !production.ValidStage(tpl.Stage) {
			return plan, services.Wrap(services.ErrValidation, "catalog", "replace templates",
				fmt.Sprintf("task %q has stage %d outside 1..4", tpl.TaskName, tpl.Stage), nil)
		}
		key := tpl.Key()
		if _, dup := seen[key]; dup {
			return plan, services.Wrap(services.ErrValidation, "catalog", "replace templates",
				fmt.Sprintf("duplicate key stage %d order %d in batch", key.Stage, key.TaskOrder), nil)
		}
		seen[key] = struct{}{}
	}

	current := make(map[production.TemplateKey]production.Template, len(existing))
	for _, tpl := range existing {
		if !tpl.Active {
			continue
		}
		current[tpl.Key()] = tpl
	}

	for _, tpl := range incoming {
		tpl.ContentType = contentType
		tpl.Active = true
		if prior, ok := current[tpl.Key()]; ok {
			tpl.ID = prior.ID
			tpl.CreatedAt = prior.CreatedAt
			plan.Updates = append(plan.Updates, tpl)
			delete(current, tpl.Key())
			continue
		}
		plan.Inserts = append(plan.Inserts, tpl)
	}

	for _, leftover := range current {
		plan.DeactivateIDs = append(plan.DeactivateIDs, leftover.ID)
	}
	sort.Slice(plan.DeactivateIDs, func(i, j int) bool { return plan.DeactivateIDs[i] < plan.DeactivateIDs[j] })
	return plan, nil
}
