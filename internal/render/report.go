// Package render turns a finished design package into shareable output:
// an HTML report and the file set used by exports.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"homedesign/internal/domain"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var (
	reportOnce sync.Once
	reportTmpl *template.Template
	reportErr  error

	markdownPolicy = bluemonday.UGCPolicy()
)

// ReportData is the input of the HTML report. VideoSrc is the playable
// address of the video, or empty when the package has none.
type ReportData struct {
	Spec        domain.HouseSpec
	Package     *domain.DesignPackage
	Theme       string
	VideoSrc    string
	GeneratedAt time.Time
}

type reportView struct {
	Spec        domain.HouseSpec
	Theme       string
	Exterior    template.URL
	Interior    template.URL
	Plan2DImage template.URL
	Plan3DImage template.URL
	Plan2D      template.HTML
	Plan3D      template.HTML
	Script      template.HTML
	Shopping    []domain.ShoppingListItem
	VideoSrc    template.URL
	GeneratedAt string
}

// Report writes a self-contained HTML page for pkg.
func Report(w io.Writer, data ReportData) error {
	if data.Package == nil {
		return fmt.Errorf("render: nil design package")
	}
	tmpl, err := reportTemplate()
	if err != nil {
		return err
	}
	view := reportView{
		Spec:        data.Spec,
		Theme:       themeOrDefault(data.Theme),
		Plan2DImage: imageURL(data.Package.Plan2D.ImageURL),
		Plan3DImage: imageURL(data.Package.Plan3D.ImageURL),
		Shopping:    data.Package.ShoppingList,
		VideoSrc:    template.URL(data.VideoSrc),
		GeneratedAt: data.GeneratedAt.UTC().Format(time.RFC1123),
	}
	if len(data.Package.Images) > domain.ImageExterior {
		view.Exterior = imageURL(data.Package.Images[domain.ImageExterior])
	}
	if len(data.Package.Images) > domain.ImageInterior {
		view.Interior = imageURL(data.Package.Images[domain.ImageInterior])
	}
	if view.Script, err = Markdown(data.Package.WalkthroughScript); err != nil {
		return err
	}
	if view.Plan2D, err = Markdown(data.Package.Plan2D.Description); err != nil {
		return err
	}
	if view.Plan3D, err = Markdown(data.Package.Plan3D.Description); err != nil {
		return err
	}
	return tmpl.Execute(w, view)
}

// Markdown converts model-written markdown to sanitised HTML.
func Markdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes())), nil
}

func reportTemplate() (*template.Template, error) {
	reportOnce.Do(func() {
		reportTmpl, reportErr = template.New("report.html.tmpl").Funcs(template.FuncMap{
			"join": strings.Join,
		}).ParseFS(templateFS, "templates/report.html.tmpl")
	})
	return reportTmpl, reportErr
}

// imageURL trusts only base64 image data URLs so html/template does not
// rewrite them to #ZgotmplZ.
func imageURL(ref string) template.URL {
	if strings.HasPrefix(ref, "data:image/") && strings.Contains(ref, ";base64,") {
		return template.URL(ref)
	}
	return ""
}

func themeOrDefault(theme string) string {
	if theme == "dark" {
		return "dark"
	}
	return "light"
}
