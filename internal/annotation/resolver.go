package annotation

import "strings"

// OntologyResolver maps a biomedical domain label to the ordered list of
// ontology codes to query.  Resolution precedence: caller-supplied preferred
// list (lowercased) wins, then the configured per-domain list, then nil,
// which the providers interpret as "unrestricted".  An unrecognized domain at
// this layer means "no restriction", not an error; boundary validation is the
// caller's job (ParseDomain).
type OntologyResolver struct {
	domainOntologies map[string][]string
}

// NewOntologyResolver builds a resolver over the given domain-to-ontology
// map.  A nil map is allowed; every domain then resolves to nil.
func NewOntologyResolver(domainOntologies map[string][]string) *OntologyResolver {
	return &OntologyResolver{domainOntologies: domainOntologies}
}

// Resolve returns the ontology restriction for a query.
func (r *OntologyResolver) Resolve(domain Domain, preferred []string) []string {
	if len(preferred) > 0 {
		out := make([]string, 0, len(preferred))
		for _, o := range preferred {
			o = strings.ToLower(strings.TrimSpace(o))
			if o != "" {
				out = append(out, o)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if domain != "" && domain.IsValid() {
		if list, ok := r.domainOntologies[string(domain)]; ok && len(list) > 0 {
			out := make([]string, len(list))
			copy(out, list)
			return out
		}
	}
	return nil
}

// OntologiesFor returns the configured default list for a domain, or nil.
// Used by the domains listing endpoints.
func (r *OntologyResolver) OntologiesFor(domain Domain) []string {
	list := r.domainOntologies[string(domain)]
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
