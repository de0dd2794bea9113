package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate checks a project before it is stored.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.GithubURL, is.URL),
		validation.Field(&p.LiveURL, is.URL),
	)
}

// Validate checks an education entry before it is stored.
func (e Education) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Institution, validation.Required),
		validation.Field(&e.Degree, validation.Required),
	)
}

// Validate checks a skill before it is stored.
func (s Skill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Category, validation.Required),
		validation.Field(&s.Level, validation.Min(0), validation.Max(100)),
	)
}

// Validate checks a technology before it is stored.
func (t Technology) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Proficiency, validation.Min(0), validation.Max(100)),
		validation.Field(&t.YearsOfExperience, validation.Min(0)),
	)
}

// Validate checks a contact message before it is stored.
func (m Message) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.ProjectType, validation.In(toAny(ProjectTypes)...)),
		validation.Field(&m.Timeline, validation.In(toAny(Timelines)...)),
		validation.Field(&m.Message, validation.Required, validation.RuneLength(1, MaxMessageLength)),
	)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
