// Package catalog loads and serves the read-only biomarker evidence
// database: per-biomarker study sets, the static optimal-range table, and
// the fuzzy name-matching and correlation-group utilities built on top.
// The catalog is loaded once at startup and never mutated afterwards, so
// concurrent lookups need no locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/longevity-score-server/internal/domain"
)

// normCacheSize bounds the name-normalization memo. Request vocabularies
// are small; 512 entries covers every alias we have seen in practice.
const normCacheSize = 512

// Metadata describes the evidence database document.
type Metadata struct {
	TotalBiomarkers int    `json:"total_biomarkers"`
	Source          string `json:"source,omitempty"`
	GeneratedAt     string `json:"generated_at,omitempty"`
	Version         string `json:"version,omitempty"`
}

// document is the on-disk shape of the evidence database.
type document struct {
	Metadata   Metadata                             `json:"metadata"`
	Biomarkers map[string]*domain.BiomarkerEvidence `json:"biomarkers"`
}

// Catalog is the immutable in-memory evidence database.
type Catalog struct {
	meta        Metadata
	biomarkers  map[string]*domain.BiomarkerEvidence
	lowerToName map[string]string
	sortedNames []string
	normCache   *lru.Cache[string, string]
	log         *logrus.Logger
}

// Load reads the evidence database JSON from path.
func Load(path string, logger *logrus.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading evidence database: %w", err)
	}
	return Parse(data, logger)
}

// Parse builds a catalog from raw evidence database JSON.
func Parse(data []byte, logger *logrus.Logger) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding evidence database: %w", err)
	}
	if len(doc.Biomarkers) == 0 {
		return nil, fmt.Errorf("evidence database contains no biomarkers")
	}

	cache, err := lru.New[string, string](normCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating normalization cache: %w", err)
	}

	c := &Catalog{
		meta:        doc.Metadata,
		biomarkers:  doc.Biomarkers,
		lowerToName: make(map[string]string, len(doc.Biomarkers)),
		sortedNames: make([]string, 0, len(doc.Biomarkers)),
		normCache:   cache,
		log:         logger,
	}
	for name := range doc.Biomarkers {
		c.sortedNames = append(c.sortedNames, name)
		c.lowerToName[strings.ToLower(name)] = name
	}
	// Map iteration order is random; keep a sorted view so fuzzy matching
	// resolves ties the same way on every run.
	sort.Strings(c.sortedNames)

	logger.WithFields(logrus.Fields{
		"biomarkers": len(c.biomarkers),
		"source":     c.meta.Source,
	}).Info("Loaded biomarker evidence database")

	return c, nil
}

// Metadata returns the database metadata.
func (c *Catalog) Metadata() Metadata {
	return c.meta
}

// Len returns the number of biomarkers in the catalog.
func (c *Catalog) Len() int {
	return len(c.biomarkers)
}

// Names returns all catalog biomarker names in sorted order.
func (c *Catalog) Names() []string {
	return c.sortedNames
}

// Lookup returns the evidence entry for an exact catalog key.
func (c *Catalog) Lookup(name string) (*domain.BiomarkerEvidence, bool) {
	e, ok := c.biomarkers[name]
	return e, ok
}

// NormalizeName resolves a free-text biomarker name to a catalog key.
// It tries an exact case-insensitive match first, then word-set overlap
// scoring (|A∩B| / |A∪B|) against every catalog key, requiring at least
// 0.5 overlap. Returns false when nothing matches; the caller must treat
// that as "biomarker not in evidence base" and skip it.
func (c *Catalog) NormalizeName(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}

	if match, ok := c.normCache.Get(key); ok {
		return match, match != ""
	}

	match := c.normalize(key)
	c.normCache.Add(key, match)
	return match, match != ""
}

func (c *Catalog) normalize(lowered string) string {
	if name, ok := c.lowerToName[lowered]; ok {
		return name
	}

	nameWords := wordSet(lowered)
	if len(nameWords) == 0 {
		return ""
	}

	bestMatch := ""
	bestScore := 0.0
	for _, dbName := range c.sortedNames {
		dbWords := wordSet(strings.ToLower(dbName))

		overlap := 0
		for w := range nameWords {
			if _, ok := dbWords[w]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		union := len(nameWords) + len(dbWords) - overlap
		score := float64(overlap) / float64(union)
		// At least 50% word overlap; ties resolve to the first name in
		// sorted order.
		if score > bestScore && score >= 0.5 {
			bestScore = score
			bestMatch = dbName
		}
	}

	return bestMatch
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
