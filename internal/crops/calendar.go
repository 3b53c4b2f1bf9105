package crops

// Season labels for the planting calendar, northern-hemisphere month
// ranges.
const (
	SeasonSpring = "Spring (Mar-May)"
	SeasonSummer = "Summer (Jun-Aug)"
	SeasonFall   = "Fall (Sep-Nov)"
	SeasonWinter = "Winter (Dec-Feb)"
)

// SeasonOrder fixes iteration order for rendering the calendar.
var SeasonOrder = []string{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// buildSeasonalCalendar buckets crops into planting seasons from their
// temperature tolerance. A crop can appear in more than one season.
func buildSeasonalCalendar(profiles []*Profile) map[string][]string {
	calendar := map[string][]string{
		SeasonSpring: {},
		SeasonSummer: {},
		SeasonFall:   {},
		SeasonWinter: {},
	}

	for _, p := range profiles {
		if p.TempMinC >= 15 && p.TempMinC <= 25 {
			calendar[SeasonSpring] = append(calendar[SeasonSpring], p.Name)
			calendar[SeasonFall] = append(calendar[SeasonFall], p.Name)
		}
		if p.TempMaxC >= 20 && p.TempMaxC <= 35 {
			calendar[SeasonSummer] = append(calendar[SeasonSummer], p.Name)
		}
		if p.TempMinC < 15 {
			calendar[SeasonWinter] = append(calendar[SeasonWinter], p.Name)
		}
	}

	return calendar
}
