package render

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jonechelon/matchfly-pseo/internal/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// PageData feeds the per-flight template. UpdatedAt is the record's own
// observation time, never the wall clock, so rerendering an unchanged record
// reproduces the page byte for byte.
type PageData struct {
	Record        models.FlightRecord
	Slug          string
	CanonicalURL  string
	AffiliateLink string
	SiteDomain    string
	UpdatedAt     time.Time
}

// Card pairs a record with the slug its page lives under.
type Card struct {
	Record models.FlightRecord
	Slug   string
}

// HomeData feeds the homepage template.
type HomeData struct {
	Cards          []Card
	TotalCount     int
	DelayedCount   int
	CancelledCount int
	BaseURL        string
	SiteDomain     string
	UpdatedAt      time.Time
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"statusLabel": func(s models.Status) string {
			switch s {
			case models.StatusDelayed:
				return "Atrasado"
			case models.StatusCancelled:
				return "Cancelado"
			default:
				return "Programado"
			}
		},
		"statusClass": func(s models.Status) string {
			if s == models.StatusCancelled {
				return "bg-red-100 text-red-800"
			}
			return "bg-orange-500 text-white"
		},
		"formatDelay": func(minutes int) string {
			if minutes < 60 {
				return fmt.Sprintf("%d min", minutes)
			}
			h, m := minutes/60, minutes%60
			if m == 0 {
				return fmt.Sprintf("%dh", h)
			}
			return fmt.Sprintf("%dh%02d", h, m)
		},
		"formatDate": func(t time.Time) string { return t.Format("02/01/2006") },
		"formatTime": func(t time.Time) string { return t.Format("15:04") },
		"formatDateTime": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format("02/01/2006 15:04")
			case *time.Time:
				if t == nil {
					return ""
				}
				return t.Format("02/01/2006 15:04")
			default:
				return ""
			}
		},
	}
}

// ParseTemplates loads the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	t, err := template.New("pages").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return t, nil
}
