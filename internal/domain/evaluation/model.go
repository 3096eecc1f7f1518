package evaluation

// Status is the verdict of a check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// TravelIssue flags a single transfer over the long-transfer threshold.
type TravelIssue struct {
	POI           string `json:"poi"`
	TravelMinutes int    `json:"travelMinutes"`
}

// DayFeasibility is the per-day breakdown of Feasibility.
type DayFeasibility struct {
	Day              int           `json:"day"`
	TotalMinutes     int           `json:"totalMinutes"`
	AvailableMinutes int           `json:"availableMinutes"`
	POICount         int           `json:"poiCount"`
	PaceLimit        int           `json:"paceLimit"`
	TravelIssues     []TravelIssue `json:"travelIssues"`
	Status           Status        `json:"status"`
}

// FeasibilityReport summarizes time and pace checks.
type FeasibilityReport struct {
	OverallStatus Status           `json:"overallStatus"`
	DayResults    []DayFeasibility `json:"dayResults"`
}

// GroundingIssue describes one provenance problem. Day is set for day-level issues, POI for block-level ones.
type GroundingIssue struct {
	Day   int    `json:"day,omitempty"`
	POI   string `json:"poi,omitempty"`
	Issue string `json:"issue"`
}

// GroundingReport summarizes provenance checks.
type GroundingReport struct {
	TotalPOIsChecked int              `json:"totalPoisChecked"`
	IssuesFound      []GroundingIssue `json:"issuesFound"`
	OverallStatus    Status           `json:"overallStatus"`
}

// EditReport is the diff between two snapshots around a single-day edit.
type EditReport struct {
	ChangedDays       []int  `json:"changedDays"`
	UnexpectedChanges []int  `json:"unexpectedChanges"`
	Status            Status `json:"status"`
}
