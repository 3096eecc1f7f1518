package evaluation

import (
	"strings"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

// Provenance every grounded block must carry.
const (
	GroundedIDPrefix = "osm_"
	GroundedSource   = "OpenStreetMap"
)

const (
	issueEmptyTrip   = "No POIs planned for this trip."
	issueEmptyDay    = "No POIs planned for this day."
	issueBadID       = "Invalid POI ID format"
	issueNoCoords    = "Missing coordinates"
	issueAttribution = "Missing or invalid source attribution"
)

// Grounding verifies that every block traces back to the map source.
func Grounding(trip itinerary.TripState) GroundingReport {
	report := GroundingReport{IssuesFound: []GroundingIssue{}}
	if len(trip.Days) == 0 {
		report.IssuesFound = append(report.IssuesFound, GroundingIssue{Issue: issueEmptyTrip})
	}

	for _, day := range trip.Days {
		if len(day.Blocks) == 0 {
			report.IssuesFound = append(report.IssuesFound, GroundingIssue{Day: day.Day, Issue: issueEmptyDay})
		}
		for _, block := range day.Blocks {
			report.TotalPOIsChecked++
			if !strings.HasPrefix(block.POIID, GroundedIDPrefix) {
				report.IssuesFound = append(report.IssuesFound, GroundingIssue{POI: block.Name, Issue: issueBadID})
			}
			if !block.Location().Present() {
				report.IssuesFound = append(report.IssuesFound, GroundingIssue{POI: block.Name, Issue: issueNoCoords})
			}
			if block.Source != GroundedSource {
				report.IssuesFound = append(report.IssuesFound, GroundingIssue{POI: block.Name, Issue: issueAttribution})
			}
		}
	}

	report.OverallStatus = StatusPass
	if len(report.IssuesFound) > 0 {
		report.OverallStatus = StatusFail
	}
	return report
}
