package model

import "encoding/json"

// Instance represents one configured ArgoCD server endpoint
type Instance struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Credentials is the fleet-wide username/password pair, supplied once at
// construction and never persisted beyond memory
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AppQuery selects applications either by exact name or by label selector.
// Exactly one of the two must be set.
type AppQuery struct {
	Name     string `json:"name,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// ByName reports whether the query is an exact-name query
func (q AppQuery) ByName() bool {
	return q.Name != ""
}

// BySelector reports whether the query is a label-selector query
func (q AppQuery) BySelector() bool {
	return q.Selector != ""
}

// LocatedApp is one instance's locator result: the instance coordinates plus
// every matching application name found on it. Instances with zero matches
// never appear as a LocatedApp.
type LocatedApp struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	AppNames []string `json:"appName"`
}

// AppData is raw application state decorated with the originating instance
// name. The payload keeps whatever shape the server returned; callers inspect
// it rather than this layer forcing a schema onto it.
type AppData struct {
	Instance string          `json:"instance"`
	Payload  json.RawMessage `json:"payload"`
}

// SyncStatus is the two-valued outcome of a sync request
type SyncStatus string

const (
	SyncSuccess SyncStatus = "Success"
	SyncFailure SyncStatus = "Failure"
)

// SyncResult is the per (instance, app) outcome of a sync. A Failure here is
// data, not an error: sync never rejects on HTTP status.
type SyncResult struct {
	Message string     `json:"message"`
	Status  SyncStatus `json:"status"`
}

// MutationRequest describes one instance-scoped create/delete mutation.
// It is an immutable value: BaseURL and Token pin the mutation to a single
// resolved instance, the remaining fields describe the resources involved.
type MutationRequest struct {
	BaseURL     string `json:"baseUrl"`
	Token       string `json:"argoToken"`
	ProjectName string `json:"projectName"`
	Namespace   string `json:"namespace"`
	SourceRepo  string `json:"sourceRepo"`
	SourcePath  string `json:"sourcePath,omitempty"`
	LabelValue  string `json:"labelValue,omitempty"`
	AppName     string `json:"appName,omitempty"`
}
