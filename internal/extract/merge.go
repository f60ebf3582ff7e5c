package extract

import "tripgenie/internal/domain"

// Merge overlays explicit form values on top of extracted ones: a field the
// user set explicitly always wins, extracted values only fill the gaps.
func Merge(explicit, extracted domain.TravelPreferences) domain.TravelPreferences {
	out := explicit
	if out.DepartureLocation == "" {
		out.DepartureLocation = extracted.DepartureLocation
	}
	if out.Destination == "" {
		out.Destination = extracted.Destination
	}
	if out.StartDate == "" {
		out.StartDate = extracted.StartDate
	}
	if out.EndDate == "" {
		out.EndDate = extracted.EndDate
	}
	if out.Budget == "" {
		out.Budget = extracted.Budget
	}
	if out.TravelStyle == "" {
		out.TravelStyle = extracted.TravelStyle
	}
	if len(out.Interests) == 0 && len(extracted.Interests) > 0 {
		out.Interests = append([]string(nil), extracted.Interests...)
	}
	if out.GroupSize == nil && extracted.GroupSize != nil {
		gs := *extracted.GroupSize
		out.GroupSize = &gs
	}
	if out.Accommodation == "" {
		out.Accommodation = extracted.Accommodation
	}
	if out.Transportation == "" {
		out.Transportation = extracted.Transportation
	}
	if out.TravelClass == "" {
		out.TravelClass = extracted.TravelClass
	}
	if out.Flexibility == "" {
		out.Flexibility = extracted.Flexibility
	}
	if out.NLPQuery == "" {
		out.NLPQuery = extracted.NLPQuery
	}
	return out
}
