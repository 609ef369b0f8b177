package health

import "time"

const statusMessage = "Skill Search API is running"

// Status is the liveness payload served at the root path.
type Status struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service encapsulates health-related checks.
type Service struct {
	now func() time.Time
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{now: time.Now}
}

// Status returns the liveness payload stamped with the current time.
func (s *Service) Status() Status {
	now := time.Now
	if s != nil && s.now != nil {
		now = s.now
	}
	return Status{Message: statusMessage, Timestamp: now().UTC()}
}
