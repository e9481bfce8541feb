package generic

import "sync"

// Ledger rows store the resource as its ID. Domain packages register their
// ResourceType in init so a row read back gets the concrete type again.

var resources sync.Map // ResourceID -> ResourceType

// RegisterResource makes r resolvable by its ID.
func RegisterResource(r ResourceType) {
	resources.Store(r.ResourceID(), r)
}

// LookupResource returns the registered type for id, or nil.
func LookupResource(id string) ResourceType {
	if r, ok := resources.Load(id); ok {
		return r.(ResourceType)
	}
	return nil
}

// UnknownResource stands in for an ID no package registered, so old rows
// still load after a domain package is removed.
type UnknownResource string

func (r UnknownResource) ResourceID() string     { return string(r) }
func (r UnknownResource) ResourceDomain() string { return "unknown" }

// GetOrCreateResource resolves id, falling back to UnknownResource.
func GetOrCreateResource(id string) ResourceType {
	if r := LookupResource(id); r != nil {
		return r
	}
	return UnknownResource(id)
}
