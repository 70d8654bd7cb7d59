package dto

// ResultDTO is one stored draw result as presented to clients
type ResultDTO struct {
	Period    string `json:"period"`
	Number    string `json:"number"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

// LatestResultsResponse is the payload of the results listing API
type LatestResultsResponse struct {
	Results     []ResultDTO `json:"results"`
	Count       int         `json:"count"`
	LastUpdated string      `json:"last_updated"`
}

// ResultsPageData feeds the HTML results page. The page always renders:
// a store failure degrades to an empty list plus the Error string.
type ResultsPageData struct {
	Results     []ResultDTO
	LastUpdated string
	Error       string
}

// ListResultsQuery carries the validated query parameters of the results API
type ListResultsQuery struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100"`
}
