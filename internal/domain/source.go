package domain

// Availability statuses reported by the Sources API for sources,
// endpoints, authentications and applications.
const (
	AvailabilityAvailable            = "available"
	AvailabilityUnavailable          = "unavailable"
	AvailabilityInProgress           = "in_progress"
	AvailabilityPartiallyUnavailable = "partially_unavailable"
	AvailabilityUnknown              = "unknown"
)

// Resource types an authentication can be attached to.
const (
	ResourceTypeEndpoint    = "Endpoint"
	ResourceTypeApplication = "Application"
	ResourceTypeSource      = "Source"
)

// Source is the top-level integration record being edited.
type Source struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	ID           string `json:"id"`
	UID          string `json:"uid,omitempty"`
	SourceTypeID string `json:"source_type_id,omitempty"`

	// ─────────────────────────────
	// Editable attributes
	// ─────────────────────────────

	Name                string `json:"name,omitempty"`
	SourceRef           string `json:"source_ref,omitempty"`
	AppCreationWorkflow string `json:"app_creation_workflow,omitempty"`

	// ─────────────────────────────
	// Observation
	// ─────────────────────────────

	AvailabilityStatus string `json:"availability_status,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// Endpoint is the network location of a source.
// A source may list several endpoints but only the first one is editable.
type Endpoint struct {
	ID                   string `json:"id"`
	Scheme               string `json:"scheme,omitempty"`
	Host                 string `json:"host,omitempty"`
	Port                 *int   `json:"port,omitempty"`
	Path                 string `json:"path,omitempty"`
	Role                 string `json:"role,omitempty"`
	Default              bool   `json:"default,omitempty"`
	ReceptorNode         string `json:"receptor_node,omitempty"`
	CertificateAuthority string `json:"certificate_authority,omitempty"`
	VerifySSL            *bool  `json:"verify_ssl,omitempty"`

	AvailabilityStatus      string `json:"availability_status,omitempty"`
	AvailabilityStatusError string `json:"availability_status_error,omitempty"`
}

// Authentication is a credential record. It is either shared (attached to
// the source or its endpoint) or owned by a single application.
type Authentication struct {
	ID       string         `json:"id"`
	Authtype string         `json:"authtype,omitempty"`
	Name     string         `json:"name,omitempty"`
	Username string         `json:"username,omitempty"`
	Password string         `json:"password,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`

	// ResourceType is one of ResourceTypeEndpoint, ResourceTypeApplication
	// or ResourceTypeSource.
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`

	AvailabilityStatus      string `json:"availability_status,omitempty"`
	AvailabilityStatusError string `json:"availability_status_error,omitempty"`
}

// Application belongs to exactly one source.
type Application struct {
	ID                string `json:"id"`
	ApplicationTypeID string `json:"application_type_id,omitempty"`

	AvailabilityStatus      string `json:"availability_status,omitempty"`
	AvailabilityStatusError string `json:"availability_status_error,omitempty"`

	// PausedAt is set when data collection for the application is paused.
	PausedAt string `json:"paused_at,omitempty"`

	// Extra is opaque provider-specific metadata.
	Extra map[string]any `json:"extra,omitempty"`

	Authentications []Authentication `json:"authentications,omitempty"`
}

// HasEndpointAuthentication reports whether the application shares the
// source endpoint through at least one Endpoint-typed authentication.
func (a Application) HasEndpointAuthentication() bool {
	for _, auth := range a.Authentications {
		if auth.ResourceType == ResourceTypeEndpoint {
			return true
		}
	}
	return false
}

// SourceBundle is the raw entity graph of one source as fetched from the
// Sources API. Nil slices mean the sub-entity was absent.
type SourceBundle struct {
	Source          Source           `json:"source"`
	Endpoints       []Endpoint       `json:"endpoints,omitempty"`
	Authentications []Authentication `json:"authentications,omitempty"`
	Applications    []Application    `json:"applications,omitempty"`
}

// PrimaryEndpoint returns the editable endpoint, if any.
func (b SourceBundle) PrimaryEndpoint() (Endpoint, bool) {
	if len(b.Endpoints) == 0 {
		return Endpoint{}, false
	}
	return b.Endpoints[0], true
}
