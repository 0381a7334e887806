package model

import "time"

// Default values for a freshly created profile.
const (
	DefaultRating        = 5.0
	DefaultJobsCompleted = 0
)

// ProfessionalProfile is a directory entry describing a service provider.
// It is stored independently of the Professional login identity.
type ProfessionalProfile struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	ServiceType   string    `json:"serviceType"`
	Rating        float64   `json:"rating"`
	JobsCompleted uint32    `json:"jobsCompleted"`
	Experience    uint32    `json:"experience"`
	CostPerHour   float64   `json:"costPerHour"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	ContactEmail  string    `json:"contactEmail"`
	ImageRef      string    `json:"imageRef,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
