package api

import (
	"context"
	"time"

	dclass "github.com/dclass-hq/dclass-go"
)

// Caller executes one API request and decodes the response into out. The root
// dclass client satisfies it.
type Caller interface {
	Call(ctx context.Context, req dclass.Request, out any) error
}

// Job defines a public type used by dclass APIs.
//
// Job instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Region      string    `json:"region,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Pay         string    `json:"pay,omitempty"`
	Status      string    `json:"status"`
	AcademyID   string    `json:"academyId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// JobInput is the creatable and updatable subset of [Job].
type JobInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Region      string   `json:"region,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Pay         string   `json:"pay,omitempty"`
}

// JobFilter narrows a job listing. Zero values are omitted from the query.
type JobFilter struct {
	Region string
	Genres []string
	Status string
	Sort   string
	Page   int
	Limit  int
}

// Application defines a public type used by dclass APIs.
//
// Application instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Application struct {
	ID           string    `json:"id"`
	JobID        string    `json:"jobId"`
	InstructorID string    `json:"instructorId"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// Review defines a public type used by dclass APIs.
//
// Review instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Review struct {
	ID           string    `json:"id"`
	AcademyID    string    `json:"academyId"`
	JobID        string    `json:"jobId"`
	InstructorID string    `json:"instructorId,omitempty"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	Pros         []string  `json:"pros,omitempty"`
	Cons         []string  `json:"cons,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// ReviewInput is the creatable and updatable subset of [Review]. Rating runs
// from 1 to 5.
type ReviewInput struct {
	AcademyID string   `json:"academyId"`
	JobID     string   `json:"jobId"`
	Rating    int      `json:"rating"`
	Content   string   `json:"content"`
	Pros      []string `json:"pros,omitempty"`
	Cons      []string `json:"cons,omitempty"`
}

func (in ReviewInput) validate() error {
	if in.AcademyID == "" || in.JobID == "" || in.Content == "" {
		return dclass.ErrValidation
	}
	if in.Rating < 1 || in.Rating > 5 {
		return dclass.ErrValidation
	}
	return nil
}

// ReviewSummary aggregates the reviews of one academy.
type ReviewSummary struct {
	AverageRating float64 `json:"averageRating"`
	Count         int     `json:"count"`
}

// ReviewListOptions narrows an academy review listing. SortBy accepts
// "latest" (default) or "rating".
type ReviewListOptions struct {
	Page   int
	Limit  int
	SortBy string
}

// VerificationStatus defines a public type used by dclass APIs.
//
// VerificationStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationStatus struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	ReviewedAt      time.Time `json:"reviewed_at,omitempty"`
}

// Notification defines a public type used by dclass APIs.
//
// Notification instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
