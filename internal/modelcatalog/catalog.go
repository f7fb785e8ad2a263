// Package modelcatalog declares the optional model-catalog collaborator
// behind the external control plane's model-related endpoints. Otto's
// core never needs a catalog to run the scheduler or queue; it is
// purely a pass-through facade for an installation that wires one up.
// The control plane holds a nilable Catalog and returns
// service_unavailable when it is nil, rather than forcing every
// installation to implement one.
package modelcatalog

import "context"

// Model is one entry in the catalog.
type Model struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Provider     string `json:"provider"`
	ContextWindow int    `json:"contextWindow"`
}

// Defaults names the model refs used when a job or turn doesn't pin one.
type Defaults struct {
	ChatModelRef string `json:"chatModelRef"`
	PlanModelRef string `json:"planModelRef"`
}

// Catalog is the collaborator an installation provides to back the
// model-related external endpoints.
type Catalog interface {
	List(ctx context.Context) ([]Model, error)
	Refresh(ctx context.Context) error
	Defaults(ctx context.Context) (Defaults, error)
	SetDefaults(ctx context.Context, d Defaults) (Defaults, error)
}
