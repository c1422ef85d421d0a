package audit

import (
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/validator"
)

type Filter struct {
	ActorID    *string
	Action     *string
	EntityType *string
	EntityID   *string
	Severity   *string
	From       *string // RFC3339
	To         *string
	Page       int
	Limit      int
}

func (f Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Severity != nil && !validator.IsInSlice(*f.Severity, []string{
		string(SeverityInfo), string(SeverityWarning), string(SeverityCritical),
	}) {
		errs = append(errs, validator.ValidationError{Field: "severity", Message: "invalid severity"})
	}
	if f.From != nil {
		if _, ok := validator.IsValidDateTime(*f.From); !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "must be an RFC3339 timestamp"})
		}
	}
	if f.To != nil {
		if _, ok := validator.IsValidDateTime(*f.To); !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "must be an RFC3339 timestamp"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EntryResponse struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	Severity   string                 `json:"severity"`
	IPAddress  *string                `json:"ip_address,omitempty"`
	UserAgent  *string                `json:"user_agent,omitempty"`
	CreatedAt  string                 `json:"created_at"`
}

type ListEntriesResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Entries    []EntryResponse `json:"entries"`
}
