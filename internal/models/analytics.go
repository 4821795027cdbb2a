package models

// AnalyticsSummary aggregates site traffic figures proxied from the hosted
// analytics provider.
type AnalyticsSummary struct {
	Visitors      int     `json:"visitors"`
	Pageviews     int     `json:"pageviews"`
	BounceRate    float64 `json:"bounce_rate"`
	VisitDuration float64 `json:"visit_duration"`
	Period        string  `json:"period"`
}
