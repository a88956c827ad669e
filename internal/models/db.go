package models

import (
	"time"
)

// Company is one row of companies; names are unique.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Posting struct {
	ID              int64      `json:"id"`
	CompanyID       int64      `json:"company_id"`
	Title           string     `json:"title"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	RecruitmentLink *string    `json:"recruitment_link,omitempty"`
	JSSLink         string     `json:"jss_link"`
	CustomID        *string    `json:"custom_id,omitempty"` // employment_id on the site
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type PostingJob struct {
	ID              int64   `json:"id"`
	PostingID       int64   `json:"posting_id"`
	Title           *string `json:"title,omitempty"`
	RecruitmentType *string `json:"recruitment_type,omitempty"`
	Prompts         []EssayPrompt
}

type EssayPrompt struct {
	ID           int64  `json:"id"`
	JobID        int64  `json:"job_id"`
	QuestionText string `json:"question_text"`
	CharLimit    *int   `json:"char_limit,omitempty"`
}
