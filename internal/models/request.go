package models

import "time"

// RequestKind distinguishes contact enquiries from job applications.
type RequestKind string

const (
	RequestKindContact     RequestKind = "CONTACT"
	RequestKindApplication RequestKind = "APPLICATION"
)

// RequestStatus tracks admin handling of a customer request.
type RequestStatus string

const (
	RequestStatusNew        RequestStatus = "NEW"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusDone       RequestStatus = "DONE"
)

// Request represents a customer enquiry or job application row.
type Request struct {
	ID        string        `db:"id" json:"id"`
	Kind      RequestKind   `db:"kind" json:"kind"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Phone     *string       `db:"phone" json:"phone,omitempty"`
	Message   string        `db:"message" json:"message"`
	Language  string        `db:"language" json:"language"`
	CVPath    *string       `db:"cv_path" json:"-"`
	Status    RequestStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestNote is an internal admin note attached to a request.
type RequestNote struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RequestFilter captures listing criteria for requests.
type RequestFilter struct {
	Kind     *RequestKind
	Status   *RequestStatus
	Search   string
	Page     int
	PageSize int
}
