// Package models defines the domain types for Folio.
package models

import "time"

// Record is implemented by every element of a file-backed collection.
type Record interface {
	RecordID() string
}

// Meta holds the identity and timestamps shared by all collection records.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordID returns the record identifier.
func (m Meta) RecordID() string { return m.ID }

// Project is a portfolio project entry.
type Project struct {
	Meta
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Image        string   `json:"image,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
	LiveURL      string   `json:"liveUrl,omitempty"`
	Category     string   `json:"category,omitempty"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
}

// Education is an education or certification entry.
type Education struct {
	Meta
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Certificate string `json:"certificate,omitempty"`
}

// Skill is one entry of the skills listing.
type Skill struct {
	Meta
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
	Icon     string `json:"icon,omitempty"`
}

// Technology is one entry of the technology stack listing.
type Technology struct {
	Meta
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	Icon              string `json:"icon,omitempty"`
	Proficiency       int    `json:"proficiency"`
	YearsOfExperience int    `json:"yearsOfExperience,omitempty"`
}

// Stats holds the site counters.
type Stats struct {
	CVViews         int       `json:"cvViews"`
	CVDownloads     int       `json:"cvDownloads"`
	Visitors        int       `json:"visitors"`
	MonthlyVisitors []int     `json:"monthlyVisitors"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// PersonalInfo is the free-form profile document.
type PersonalInfo map[string]any
