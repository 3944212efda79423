package gateway

import (
	"context"
	"sort"
	"strings"

	"github.com/mselser95/venuehub/pkg/types"
)

// Constructor builds and loads a handle for one venue.
type Constructor func(ctx context.Context, creds types.Credentials) (Gateway, error)

// Descriptor is the static description of a supported venue.
type Descriptor struct {
	ID           string
	Name         string
	Countries    []string
	URLs         types.ExchangeURLs
	RateLimit    int // minimum milliseconds between requests
	Certified    bool
	Description  string
	Founded      int
	Timeframes   []string
	Capabilities Capabilities
	Constructor  Constructor
}

// Summary converts the descriptor to its listing form.
func (d Descriptor) Summary() types.ExchangeSummary {
	return types.ExchangeSummary{
		ID:           d.ID,
		Name:         d.Name,
		Countries:    d.Countries,
		URLs:         d.URLs,
		Capabilities: d.Capabilities.Map(),
		RateLimit:    d.RateLimit,
		Certified:    d.Certified,
	}
}

// Registry holds the supported venues. It is populated at startup and read-only afterwards.
type Registry struct {
	venues map[string]Descriptor
}

// NewRegistry creates a registry containing descs.
func NewRegistry(descs ...Descriptor) *Registry {
	r := &Registry{venues: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a venue. Not safe for use once the registry is shared.
func (r *Registry) Register(d Descriptor) {
	d.ID = NormalizeID(d.ID)
	r.venues[d.ID] = d
}

// NormalizeID lowercases and trims a venue identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Supports reports whether id names a registered venue.
func (r *Registry) Supports(id string) bool {
	_, ok := r.venues[NormalizeID(id)]
	return ok
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	d, ok := r.venues[NormalizeID(id)]
	if !ok {
		return Descriptor{}, types.NewError(types.KindUnsupportedVenue, id, "",
			"exchange "+id+" is not supported", nil)
	}
	return d, nil
}

// IDs returns the registered identifiers in lexical order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.venues))
	for id := range r.venues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptors returns every descriptor ordered by display name.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.venues))
	for _, d := range r.venues {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// New implements Factory.
func (r *Registry) New(ctx context.Context, venueID string, creds types.Credentials) (Gateway, error) {
	d, err := r.Lookup(venueID)
	if err != nil {
		return nil, err
	}

	g, err := d.Constructor(ctx, creds)
	if err != nil {
		return nil, Translate(err, d.ID, "loadMarkets")
	}
	return g, nil
}
