package delivery

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/entregas/core"
)

// Status is the lifecycle tag of a Delivery.
type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusDelivered   Status = "DELIVERED"

	// InitialStatus is the only status a Delivery can be created with.
	InitialStatus = StatusUnderReview
)

var Statuses = []Status{StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusDelivered}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Delivery is a student's coursework submission.
// Owner is the submitter's identifier; it is not checked against stored users.
type Delivery struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"` // "matricula"
	Subject   string    `json:"subject"`
	Task      string    `json:"task"`
	DueDate   time.Time `json:"dueDate"`
	FileURL   string    `json:"fileUrl"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewDelivery contains information needed to create a new Delivery.
type NewDelivery struct {
	Owner   string `json:"owner" validate:"required,notblank"`
	Subject string `json:"subject" validate:"required,notblank"`
	Task    string `json:"task" validate:"required,notblank"`
	DueDate string `json:"dueDate" validate:"required,date"`
	FileURL string `json:"fileUrl" validate:"required,notblank"`
}

// Validate cleans & validates nd. When the Delivery comes with an uploaded file,
// FileURL is computed later on and is not required.
func (nd *NewDelivery) Validate(validate *validator.Validate, hasUpload bool) error {
	nd.Owner = core.CleanString(nd.Owner)
	nd.Subject = core.CleanString(nd.Subject)
	nd.Task = core.CleanString(nd.Task)
	nd.DueDate = core.CleanString(nd.DueDate)
	nd.FileURL = core.CleanString(nd.FileURL)

	err := validate.Struct(nd)
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok || !hasUpload {
		return err
	}

	kept := make(validator.ValidationErrors, 0, len(vErrs))
	for _, vErr := range vErrs {
		if vErr.StructField() != "FileURL" {
			kept = append(kept, vErr)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// UpdateStatus is the payload of a status transition.
type UpdateStatus struct {
	Status Status `json:"status" validate:"required,status"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = Status(core.CleanString(string(us.Status)))
	return validate.Struct(us)
}

type QueryFilter struct {
	Owner string `query:"owner"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Owner == ""
}

func (qf *QueryFilter) Clean() {
	qf.Owner = core.CleanString(qf.Owner)
}

// DefaultOrdering lists the most recent deliveries first.
var DefaultOrdering = core.DBOrdering{Field: "created_at", Ascending: false}
