package domain

import "time"

type SourceType string

const (
	SourceGovernment SourceType = "GOVERNMENT"
	SourceAcademic   SourceType = "ACADEMIC"
	SourceNews       SourceType = "NEWS"
	SourceAPI        SourceType = "API"
	SourceOfficial   SourceType = "OFFICIAL"
)

type ResolutionType string

const (
	ResolutionAutomatic ResolutionType = "AUTOMATIC"
	ResolutionMultiSig  ResolutionType = "MULTI_SIG"
	ResolutionOracle    ResolutionType = "ORACLE"
)

// ResolutionEvidence is an append-only evidence record attached to an event.
type ResolutionEvidence struct {
	ID          string
	EventID     string
	URL         string
	Description string
	SubmittedBy string
	CreatedAt   time.Time
}

type VerificationSource struct {
	ID         string
	EventID    string
	SourceType SourceType
	URL        string
	IsPrimary  bool
	CreatedAt  time.Time
}

// ResolutionApproval is one approver's signature on a multi-sig event.
type ResolutionApproval struct {
	ID         string
	EventID    string
	ApproverID string
	CreatedAt  time.Time
}

type EvidenceRepository interface {
	AddEvidence(evidence *ResolutionEvidence) error
	CountEvidence(eventID string) (int64, error)
	ListEvidence(eventID string) ([]*ResolutionEvidence, error)

	AddSource(source *VerificationSource) error
	ListSources(eventID string) ([]*VerificationSource, error)

	AddApproval(approval *ResolutionApproval) error
	CountApprovals(eventID string) (int64, error)
}
