package catalog

import (
	"fmt"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// HoursTriple is the resolved planned effort for one task at one speed
// tier. Review and monitoring are zero unless the template requires them.
type HoursTriple struct {
	Main       float64
	Review     float64
	Monitoring float64
}

// Total returns the summed planned hours across the three tracks.
func (h HoursTriple) Total() float64 {
	return h.Main + h.Review + h.Monitoring
}

// ResolveHours picks the hour columns of a template matching a speed tier.
func ResolveHours(tpl production.Template, tier production.SpeedTier) (HoursTriple, error) {
	var out HoursTriple
	switch tier {
	case production.TierFast:
		out.Main = tpl.HoursA
		if tpl.RequiresReview {
			out.Review = tpl.ReviewHoursA
		}
		if tpl.RequiresMonitoring {
			out.Monitoring = tpl.MonitoringHoursA
		}
	case production.TierNormal:
		out.Main = tpl.HoursB
		if tpl.RequiresReview {
			out.Review = tpl.ReviewHoursB
		}
		if tpl.RequiresMonitoring {
			out.Monitoring = tpl.MonitoringHoursB
		}
	case production.TierRelaxed:
		out.Main = tpl.HoursC
		if tpl.RequiresReview {
			out.Review = tpl.ReviewHoursC
		}
		if tpl.RequiresMonitoring {
			out.Monitoring = tpl.MonitoringHoursC
		}
	default:
		return out, services.Wrap(services.ErrValidation, "catalog", "resolve hours",
			fmt.Sprintf("unknown speed tier %q", tier), nil)
	}
	return out, nil
}

// FillMissingTiers derives absent A and C hour columns from the reference
// tier B using the configured multipliers. Only zero columns are filled;
// explicitly authored values are never overwritten. This runs at template
// load time, never when resolving hours for an existing project.
func FillMissingTiers(tpl *production.Template, multiplierA, multiplierC float64) {
	fill := func(a, c *float64, b float64) {
		if *a == 0 && b > 0 {
			*a = b * multiplierA
		}
		if *c == 0 && b > 0 {
			*c = b * multiplierC
		}
	}
	fill(&tpl.HoursA, &tpl.HoursC, tpl.HoursB)
	if tpl.RequiresReview {
		fill(&tpl.ReviewHoursA, &tpl.ReviewHoursC, tpl.ReviewHoursB)
	}
	if tpl.RequiresMonitoring {
		fill(&tpl.MonitoringHoursA, &tpl.MonitoringHoursC, tpl.MonitoringHoursB)
	}
}
