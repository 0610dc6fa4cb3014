package model

// ServiceCategory tags a listing with the home-service vertical it belongs
// to. One parametrized listing/booking pair serves every category.
type ServiceCategory string

const (
	CategoryPlumbing       ServiceCategory = "plumbing"
	CategoryElectrical     ServiceCategory = "electrical"
	CategoryAC             ServiceCategory = "ac"
	CategoryCarpentry      ServiceCategory = "carpentry"
	CategoryBathroom       ServiceCategory = "bathroom"
	CategoryGeyser         ServiceCategory = "geyser"
	CategoryWashingMachine ServiceCategory = "washing-machine"
	CategoryTelevision     ServiceCategory = "television"
	CategoryPestControl    ServiceCategory = "pest-control"
	CategorySofaCarpet     ServiceCategory = "sofa-carpet"
	CategoryHomeCleaning   ServiceCategory = "home-cleaning"
)

var allCategories = map[ServiceCategory]struct{}{
	CategoryPlumbing:       {},
	CategoryElectrical:     {},
	CategoryAC:             {},
	CategoryCarpentry:      {},
	CategoryBathroom:       {},
	CategoryGeyser:         {},
	CategoryWashingMachine: {},
	CategoryTelevision:     {},
	CategoryPestControl:    {},
	CategorySofaCarpet:     {},
	CategoryHomeCleaning:   {},
}

// scheduledCategories are the verticals whose bookings reserve an explicit
// time slot. Their bookings must carry scheduled_at and are subject to
// conflict detection and the cancellation lead window.
var scheduledCategories = map[ServiceCategory]struct{}{
	CategoryPestControl: {},
}

func (c ServiceCategory) IsValid() bool {
	_, ok := allCategories[c]
	return ok
}

func (c ServiceCategory) RequiresSchedule() bool {
	_, ok := scheduledCategories[c]
	return ok
}

func (c ServiceCategory) String() string {
	return string(c)
}

func Categories() []ServiceCategory {
	out := make([]ServiceCategory, 0, len(allCategories))
	for c := range allCategories {
		out = append(out, c)
	}
	return out
}
