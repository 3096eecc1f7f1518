package overpass

import (
	"fmt"
	"strings"
)

type tag struct {
	key    string
	value  string
	indoor bool
}

// interestTags maps user interests to the OSM tag searched for them.
var interestTags = map[string]tag{
	"history": {key: "tourism", value: "museum", indoor: true},
	"culture": {key: "amenity", value: "place_of_worship", indoor: true},
	"food":    {key: "amenity", value: "restaurant", indoor: true},
	"nature":  {key: "leisure", value: "park"},
}

// categoryKeys is the lookup order when reading a category back from element tags.
var categoryKeys = []string{"tourism", "amenity", "leisure"}

// buildQuery renders the Overpass QL union for the known interests; ok is false when none are known.
func buildQuery(area string, interests []string, maxResults int) (string, bool) {
	var b strings.Builder
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		t, ok := interestTags[strings.ToLower(strings.TrimSpace(interest))]
		if !ok {
			continue
		}
		clause := fmt.Sprintf(`node["%s"="%s"](area.searchArea);`, t.key, t.value)
		if _, dup := seen[clause]; dup {
			continue
		}
		seen[clause] = struct{}{}
		b.WriteString(clause)
	}
	if b.Len() == 0 {
		return "", false
	}
	if maxResults <= 0 {
		maxResults = 25
	}
	return fmt.Sprintf(`[out:json];area["name"=%q]->.searchArea;(%s);out center %d;`, area, b.String(), maxResults), true
}

func categoryOf(tags map[string]string) tag {
	for _, key := range categoryKeys {
		value, ok := tags[key]
		if !ok {
			continue
		}
		for _, t := range interestTags {
			if t.key == key && t.value == value {
				return t
			}
		}
		return tag{key: key, value: value}
	}
	return tag{value: "poi"}
}
