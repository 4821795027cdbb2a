package models

// Course is one scheduled course parsed from the external booking page.
type Course struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartDate       string `json:"start_date"`
	Location        string `json:"location"`
	RegistrationURL string `json:"registration_url"`
	SeatsLeft       int    `json:"seats_left"`
}
