package memory

import (
	"encoding/json"
	"regexp"
	"strconv"
)

var (
	bookingIDRe = regexp.MustCompile(`"booking_id":\s*(\d+)`)
	carIDRe     = regexp.MustCompile(`"car_id":\s*(\d+)`)
	nameRe      = regexp.MustCompile(`"name":\s*"(.*?)"`)
	startDateRe = regexp.MustCompile(`"start_date":\s*"(.*?)"`)
	endDateRe   = regexp.MustCompile(`"end_date":\s*"(.*?)"`)
)

// NormalizeToolContent shrinks verbose tool output to the identifier fields
// worth carrying across turns. Repeated booking_id, car_id, name,
// start_date and end_date occurrences are paired up positionally and
// re-emitted as a JSON array of flat records. Content without any such
// field passes through unchanged, which also makes the rewrite idempotent.
func NormalizeToolContent(content string) string {
	bookingIDs := captures(bookingIDRe, content)
	carIDs := captures(carIDRe, content)
	names := captures(nameRe, content)
	startDates := captures(startDateRe, content)
	endDates := captures(endDateRe, content)

	n := max(len(bookingIDs), len(carIDs), len(names), len(startDates), len(endDates))
	if n == 0 {
		return content
	}

	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]any)
		if i < len(bookingIDs) {
			id, _ := strconv.Atoi(bookingIDs[i])
			rec["booking_id"] = id
		}
		if i < len(carIDs) {
			id, _ := strconv.Atoi(carIDs[i])
			rec["car_id"] = id
		}
		if i < len(names) {
			rec["name"] = names[i]
		}
		if i < len(startDates) {
			rec["start_date"] = startDates[i]
		}
		if i < len(endDates) {
			rec["end_date"] = endDates[i]
		}
		records = append(records, rec)
	}

	out, err := json.Marshal(records)
	if err != nil {
		return content
	}
	return string(out)
}

func captures(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
