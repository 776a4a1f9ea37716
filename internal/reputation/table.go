package reputation

import (
	"net/url"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// Table is the immutable publisher reputation lookup
type Table struct {
	publishers         map[string]model.PublisherProfile
	sourceScores       map[string]int
	defaultSourceScore int
	reputableOutlets   map[string]bool
	crossRefDomains    map[string]bool
}

// NewTable builds a table from seed configuration. A nil config uses the
// built-in seeds.
func NewTable(config *model.ReputationConfig) *Table {
	if config == nil {
		def := model.DefaultReputationConfig()
		config = &def
	}

	t := &Table{
		publishers:         make(map[string]model.PublisherProfile, len(config.Publishers)),
		sourceScores:       make(map[string]int, len(config.SourceScores)),
		defaultSourceScore: config.DefaultSourceScore,
		reputableOutlets:   make(map[string]bool, len(config.ReputableOutlets)),
		crossRefDomains:    make(map[string]bool, len(config.CrossReferenceDomains)),
	}

	for _, p := range config.Publishers {
		domain := NormalizeDomain(p.Domain)
		if domain == "" {
			continue
		}
		p.Domain = domain
		p.Known = true
		p.PrimaryTopics = append([]string(nil), p.PrimaryTopics...)
		t.publishers[domain] = p
	}

	for domain, score := range config.SourceScores {
		t.sourceScores[NormalizeDomain(domain)] = score
	}

	for _, outlet := range config.ReputableOutlets {
		t.reputableOutlets[outlet] = true
	}

	for _, domain := range config.CrossReferenceDomains {
		t.crossRefDomains[NormalizeDomain(domain)] = true
	}

	return t
}

// Lookup returns the profile for a domain or URL. Unknown domains get an
// estimated profile.
func (t *Table) Lookup(domainOrURL string) model.PublisherProfile {
	domain := NormalizeDomain(domainOrURL)

	if p, ok := t.match(domain); ok {
		p.PrimaryTopics = append([]string(nil), p.PrimaryTopics...)
		return p
	}

	return estimate(domain)
}

// SourceScore returns the per-domain source credibility used by the
// model-backed aggregation
func (t *Table) SourceScore(domainOrURL string) int {
	domain := NormalizeDomain(domainOrURL)

	if score, ok := lookupDomain(t.sourceScores, domain); ok {
		return score
	}
	return t.defaultSourceScore
}

// IsReputableOutlet reports whether a news source name is on the allowlist
func (t *Table) IsReputableOutlet(sourceName string) bool {
	return t.reputableOutlets[sourceName]
}

// IsCrossReferenceDomain reports whether a domain counts as a reputable
// cross-reference
func (t *Table) IsCrossReferenceDomain(domainOrURL string) bool {
	_, ok := lookupDomain(t.crossRefDomains, NormalizeDomain(domainOrURL))
	return ok
}

// match finds an exact seed or the seed a subdomain belongs to
func (t *Table) match(domain string) (model.PublisherProfile, bool) {
	return lookupDomain(t.publishers, domain)
}

// lookupDomain returns the entry for domain or its closest parent domain, so
// the longest matching seed wins
func lookupDomain[V any](seeds map[string]V, domain string) (V, bool) {
	for domain != "" {
		if v, ok := seeds[domain]; ok {
			return v, true
		}
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			break
		}
		domain = domain[i+1:]
	}
	var zero V
	return zero, false
}

// estimate derives a profile for a domain outside the seed table
func estimate(domain string) model.PublisherProfile {
	credibility := 55
	factual := model.FactualMixed

	switch {
	case strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".edu"):
		credibility = 85
		factual = model.FactualHigh
	case strings.HasSuffix(domain, ".org"):
		credibility = 75
	case strings.Contains(domain, "news") || strings.Contains(domain, "media"):
		credibility = 65
	}

	return model.PublisherProfile{
		Domain:           domain,
		Name:             nameFromDomain(domain),
		CredibilityScore: credibility,
		ReputationScore:  credibility - 5,
		Bias:             model.BiasMixed,
		FactualReporting: factual,
		Known:            false,
	}
}

// NormalizeDomain lowercases a domain or URL host and strips port and "www."
func NormalizeDomain(domainOrURL string) string {
	s := strings.TrimSpace(strings.ToLower(domainOrURL))
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if parsed, err := url.Parse(s); err == nil {
			s = parsed.Host
		}
	} else if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}

	if idx := strings.LastIndex(s, ":"); idx > 0 {
		s = s[:idx]
	}

	return strings.TrimPrefix(s, "www.")
}

// nameFromDomain turns "my-local_news.com" into "MY LOCAL NEWS"
func nameFromDomain(domain string) string {
	label := domain
	if idx := strings.Index(domain, "."); idx > 0 {
		label = domain[:idx]
	}
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return strings.ToUpper(label)
}
