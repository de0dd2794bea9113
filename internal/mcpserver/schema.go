package mcpserver

// ContentSchema describes the portfolio record shapes for LLM consumers.
const ContentSchema = `# Folio Content Schema

All records carry ` + "`id`" + ` (millisecond timestamp string), ` + "`createdAt`" + ` and ` + "`updatedAt`" + ` (RFC 3339).

## Project
- title (required, max 200), description (required)
- technologies: list of strings
- image: web path under /assets/images/projects/
- githubUrl, liveUrl: absolute URLs
- category, featured (bool), order (int, ascending display order)

## Education
- institution, degree (required), field, location, description
- startDate, endDate: free-form dates, sorted as strings
- certificate: web path under /assets/certificates/

## Skill
- name, category (required), level (0-100), icon

## Technology
- name (required), category, icon, proficiency (0-100), yearsOfExperience

## Message
- name, email, message (required; message max 5000 characters)
- company, phone, subject, budget, projectPriority, requirements
- projectType: web-development | mobile-app | ui-ux-design | consulting | other
- timeline: asap | 1-month | 1-3-months | 3-6-months | flexible
- read (bool), readAt (time or null)

Read messages older than 30 days move to a yearly archive.
`
