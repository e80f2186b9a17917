package apigraph

// ResultStatus tags the per-URL outcome of documentation processing.
type ResultStatus string

// Result statuses.
const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
	StatusSkipped ResultStatus = "skipped"
)

// PageResult is the outcome of processing one candidate documentation
// URL. Exactly one of Actions, Err, or Reason is meaningful, selected by
// Status. Results are produced once by the pipeline and are immutable
// thereafter, except for the linker's controlled rewrite of Actions.
type PageResult struct {
	URL          string       `json:"url"`
	Status       ResultStatus `json:"status"`
	Actions      []*Action    `json:"result,omitempty"`
	MultipleAPIs bool         `json:"multipleApis,omitempty"`
	Err          string       `json:"error,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// Report is the final payload of a root-URL scan. It always carries
// partial results alongside the outcome counts; callers detect total
// failure by SuccessCount == 0, never by an absent Results slice.
type Report struct {
	RootURL      string       `json:"rootUrl"`
	EndpointURLs []string     `json:"endpointUrls"`
	Results      []PageResult `json:"results"`
	SuccessCount int          `json:"successCount"`
	ErrorCount   int          `json:"errorCount"`
	SkippedCount int          `json:"skippedCount"`
	TotalScanned int          `json:"totalScanned"`

	// Err describes a scan that produced nothing discoverable. It is a
	// payload field, not a Go error: "nothing found" is a result, not a
	// failure.
	Err string `json:"error,omitempty"`
}

// PrerequisiteWorkflow is the outcome of manually augmenting an Action's
// prerequisites from a candidate documentation URL.
type PrerequisiteWorkflow struct {
	SourceURL string    `json:"sourceUrl"`
	Actions   []*Action `json:"actions"`
}
