package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDomainOntologies() map[string][]string {
	return map[string][]string{
		"disease":  {"mondo", "doid", "hp"},
		"chemical": {"chebi", "drugbank"},
		"gene":     {"hgnc", "ncbigene"},
	}
}

func TestOntologyResolver_PreferredWins(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(testDomainOntologies())

	got := r.Resolve(DomainDisease, []string{"EFO", " Orphanet "})
	assert.Equal(t, []string{"efo", "orphanet"}, got, "preferred list is lowercased and beats the domain default")
}

func TestOntologyResolver_DomainDefault(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(testDomainOntologies())

	got := r.Resolve(DomainDisease, nil)
	assert.Equal(t, []string{"mondo", "doid", "hp"}, got)
}

func TestOntologyResolver_NoRestriction(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(testDomainOntologies())

	assert.Nil(t, r.Resolve("", nil), "no domain, no preferred")
	assert.Nil(t, r.Resolve(DomainAnatomy, nil), "valid domain without a configured list")
	assert.Nil(t, r.Resolve(Domain("weather"), nil), "unknown domain is tolerated here, not rejected")
}

func TestOntologyResolver_BlankPreferredEntriesIgnored(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(testDomainOntologies())

	got := r.Resolve(DomainChemical, []string{"  ", ""})
	assert.Equal(t, []string{"chebi", "drugbank"}, got, "a preferred list of blanks falls through to the domain default")
}

func TestOntologyResolver_ResolveReturnsCopy(t *testing.T) {
	t.Parallel()

	cfg := testDomainOntologies()
	r := NewOntologyResolver(cfg)

	got := r.Resolve(DomainGene, nil)
	got[0] = "mutated"
	assert.Equal(t, []string{"hgnc", "ncbigene"}, r.Resolve(DomainGene, nil))
}

func TestOntologyResolver_NilMap(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(nil)
	assert.Nil(t, r.Resolve(DomainDisease, nil))
	assert.Equal(t, []string{"mondo"}, r.Resolve(DomainDisease, []string{"mondo"}))
}

func TestOntologyResolver_OntologiesFor(t *testing.T) {
	t.Parallel()

	r := NewOntologyResolver(testDomainOntologies())

	assert.Equal(t, []string{"chebi", "drugbank"}, r.OntologiesFor(DomainChemical))
	assert.Nil(t, r.OntologiesFor(DomainOrganism))
}
