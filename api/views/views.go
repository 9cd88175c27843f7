// Package views renders the server-side HTML pages. Every page is parsed
// together with the shared layout; flash messages queued before a redirect
// are popped and shown on the next rendered page.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
	"github.com/shopspring/decimal"
)

//go:embed templates
var templateFS embed.FS

const (
	PageIndex            = "index"
	PageLogin            = "login"
	PageRegister         = "register"
	PageDashboard        = "dashboard"
	PageForbidden        = "forbidden"
	PageError            = "error"
	PageLotDashboard     = "lot_dashboard"
	PageLotList          = "lot_list"
	PageLotForm          = "lot_form"
	PageLotDeleteConfirm = "lot_delete_confirm"
	PageLotDetails       = "lot_details"
	PageProfile          = "profile"
	PageProfileEdit      = "profile_edit"
	PageChangePassword   = "profile_change_password"
	PageProfileDelete    = "profile_delete_confirm"
)

// Page is the data handed to every template.
type Page struct {
	Title     string
	Principal *pkgAuth.Principal
	// Messages holds popped flashes followed by page-level messages.
	Messages []flash.Message
	Errors   map[string]string
	Form     any
	Data     map[string]any
}

type Renderer struct {
	pages   map[string]*template.Template
	flasher flash.Flasher
	logg    *logger.Logger
}

// New parses the embedded templates. flasher may be nil.
func New(flasher flash.Flasher, logg *logger.Logger) (*Renderer, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	pages, err := parse(templateFS)
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages, flasher: flasher, logg: logg}, nil
}

func parse(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout: %w", err)
		}
		if _, err := tmpl.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = tmpl
	}
	return pages, nil
}

// Render writes page name with the given status. Pending flashes and the
// request principal are attached to p before execution.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	ctx := r.Context()
	tmpl, ok := v.pages[name]
	if !ok {
		v.logg.Error(ctx, "views.unknown_page", fmt.Errorf("unknown page %q", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if principal, ok := pkgAuth.PrincipalFromContext(ctx); ok && p.Principal == nil {
		p.Principal = &principal
	}
	if v.flasher != nil {
		popped, err := v.flasher.Pop(w, r)
		if err != nil {
			v.logg.Warn(v.logg.WithField(ctx, "error", err.Error()), "views.flash_pop_failed")
		}
		p.Messages = append(popped, p.Messages...)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.logg.Error(v.logg.WithField(ctx, "page", name), "views.render_failed", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Forbidden renders the 403 page.
func (v *Renderer) Forbidden(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusForbidden, PageForbidden, Page{Title: "Access denied"})
}

// Error renders the generic failure page with status.
func (v *Renderer) Error(w http.ResponseWriter, r *http.Request, status int) {
	v.Render(w, r, status, PageError, Page{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status},
	})
}

var funcs = template.FuncMap{
	"percent":     percent,
	"datetime":    datetime,
	"hasRole":     hasRole,
	"lotStatuses": enums.LotStatuses,
	"statusClass": statusClass,
}

func hasRole(p *pkgAuth.Principal, role string) bool {
	return p != nil && p.HasRole(enums.UserRole(role))
}

func statusClass(s enums.LotStatus) string {
	return "status-" + strings.ToLower(string(s))
}

// percent renders an occupancy percentage with one decimal place.
func percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + "%"
}

func datetime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
