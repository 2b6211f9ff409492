package lifecycle

import (
	"fmt"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// StageWeights is the contribution of each pipeline stage to overall
// progress, indexed by stage-1.
type StageWeights [production.StageCount]float64

// DefaultWeights returns the standard 10/50/25/15 stage weighting.
func DefaultWeights() StageWeights {
	return StageWeights{10, 50, 25, 15}
}

// WeightsFromSlice validates a configured weight list and converts it into
// a StageWeights value.
func WeightsFromSlice(weights []float64) (StageWeights, error) {
	var out StageWeights
	if len(weights) != production.StageCount {
		return out, services.Wrap(services.ErrValidation, "lifecycle", "stage weights",
			fmt.Sprintf("need %d weights, got %d", production.StageCount, len(weights)), nil)
	}
	copy(out[:], weights)
	return out, nil
}

// TaskCompletion returns the completed fraction of a single task. A task
// counts as one unit of main work plus one unit each for review and
// monitoring when the generating template required them.
func TaskCompletion(t production.Task) float64 {
	units := 1
	done := 0
	if t.Status == production.TaskCompleted {
		done++
	}
	if t.ReviewRequired {
		units++
		if t.ReviewDone {
			done++
		}
	}
	if t.MonitoringRequired {
		units++
		if t.MonitoringDone {
			done++
		}
	}
	return float64(done) / float64(units)
}

// WeightedProgress computes overall project progress from its tasks: the
// average task completion per stage, weighted by the stage's configured
// share. A stage with no tasks contributes zero. The result is capped at
// 100.
func WeightedProgress(tasks []production.Task, weights StageWeights) float64 {
	var (
		sums   [production.StageCount]float64
		counts [production.StageCount]int
	)
	for _, t := range tasks {
		if !production.ValidStage(t.Stage) {
			continue
		}
		sums[t.Stage-1] += TaskCompletion(t)
		counts[t.Stage-1]++
	}

	var total float64
	for i := 0; i < production.StageCount; i++ {
		if counts[i] == 0 {
			continue
		}
		total += sums[i] / float64(counts[i]) * weights[i]
	}
	if total > 100 {
		return 100
	}
	return total
}
