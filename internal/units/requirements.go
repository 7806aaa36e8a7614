package units

import "maps"

// Resource names used as keys in Requirements.
const (
	ResourceCPU    = "cpu"
	ResourceMemory = "memory"
)

// Requirements holds converted request and limit bounds keyed by resource name.
type Requirements struct {
	Requests map[string]string
	Limits   map[string]string
}

// SetRequest records a request bound for resource.
func (r *Requirements) SetRequest(resource, value string) {
	if r.Requests == nil {
		r.Requests = map[string]string{}
	}
	r.Requests[resource] = value
}

// SetLimit records a limit bound for resource.
func (r *Requirements) SetLimit(resource, value string) {
	if r.Limits == nil {
		r.Limits = map[string]string{}
	}
	r.Limits[resource] = value
}

// Empty reports whether no bound has been recorded.
func (r Requirements) Empty() bool {
	return len(r.Requests) == 0 && len(r.Limits) == 0
}

// Merge overlays other onto a copy of r.
func (r Requirements) Merge(other Requirements) Requirements {
	out := r.Clone()
	for k, v := range other.Requests {
		out.SetRequest(k, v)
	}
	for k, v := range other.Limits {
		out.SetLimit(k, v)
	}
	return out
}

// Clone returns a deep copy.
func (r Requirements) Clone() Requirements {
	var out Requirements
	if r.Requests != nil {
		out.Requests = maps.Clone(r.Requests)
	}
	if r.Limits != nil {
		out.Limits = maps.Clone(r.Limits)
	}
	return out
}
