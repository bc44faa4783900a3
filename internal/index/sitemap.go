package index

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Writer emits the crawler-facing site files derived from a run's artifacts.
type Writer struct {
	outputDir  string
	baseURL    string
	siteDomain string
}

func NewWriter(outputDir, baseURL, siteDomain string) *Writer {
	return &Writer{outputDir: outputDir, baseURL: baseURL, siteDomain: siteDomain}
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// WriteSitemap writes sitemap.xml for the homepage plus every rendered
// artifact. Entries are URL-sorted and lastmod comes from the record itself,
// so an unchanged store yields a byte-identical sitemap.
func (w *Writer) WriteSitemap(artifacts []models.ArtifactRef, records map[models.CanonicalKey]models.FlightRecord) error {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []urlEntry{{
			Loc:        w.baseURL + "/",
			ChangeFreq: "hourly",
			Priority:   "1.0",
		}},
	}

	entries := make([]urlEntry, 0, len(artifacts))
	for _, a := range artifacts {
		entry := urlEntry{
			Loc:        w.baseURL + "/voo/" + a.Slug,
			ChangeFreq: "daily",
			Priority:   "0.8",
		}
		if rec, ok := records[a.Key]; ok {
			entry.LastMod = rec.ObservedAt.Format("2006-01-02")
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Loc < entries[j].Loc })
	set.URLs = append(set.URLs, entries...)

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	path := filepath.Join(w.outputDir, "sitemap.xml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	logging.Info("sitemap written", "urls", len(set.URLs))
	return nil
}

// WriteRobots points crawlers at the sitemap.
func (w *Writer) WriteRobots() error {
	content := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", w.baseURL)
	return os.WriteFile(filepath.Join(w.outputDir, "robots.txt"), []byte(content), 0o644)
}

// WriteSiteFiles drops the static-hosting sentinels: .nojekyll disables
// server-side processing on GitHub Pages and CNAME pins the custom domain.
func (w *Writer) WriteSiteFiles() error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, ".nojekyll"), nil, 0o644); err != nil {
		return err
	}
	if w.siteDomain == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(w.outputDir, "CNAME"), []byte(w.siteDomain+"\n"), 0o644)
}
