// Package render turns a document into a static landing page by filling one
// of the structure-type HTML templates, and reads published pages back as
// plain text for the similarity corpus.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"

	"github.com/hyeonlab/casefactory/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

// DefaultDisclaimer backfills pages whose draft came without one.
const DefaultDisclaimer = "이 콘텐츠는 일반 정보 제공용 예시이며, 법률 자문이 아닙니다. 실제 분쟁 대응은 법률 전문가와 상담하세요."

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Renderer writes rendered landing pages into a public directory.
type Renderer struct {
	publicDir string
}

// New builds a renderer targeting publicDir.
func New(publicDir string) *Renderer {
	if publicDir == "" {
		publicDir = "public"
	}
	return &Renderer{publicDir: publicDir}
}

// Render fills the template for the document's structure type and returns
// the final HTML.
func Render(doc *content.Document) (string, error) {
	tmpl, err := loadTemplate(doc.StructureType)
	if err != nil {
		return "", err
	}

	html := tmpl
	for key, value := range replacements(doc) {
		html = strings.ReplaceAll(html, "{{"+key+"}}", value)
	}
	return html, nil
}

// RenderAndSave renders the document and writes it to <publicDir>/<slug>.html.
// It returns the output path. The document must carry a slug.
func (r *Renderer) RenderAndSave(doc *content.Document) (string, error) {
	slug := doc.PageMeta.Slug
	if slug == "" {
		return "", fmt.Errorf("rendering page: document has no slug")
	}

	html, err := Render(doc)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.publicDir, 0o755); err != nil {
		return "", fmt.Errorf("creating public directory: %w", err)
	}
	outPath := filepath.Join(r.publicDir, slug+".html")
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

// PublishedText reads a published page back as plain text. Readability
// extraction is attempted first; if it yields nothing, tags are stripped.
// A missing page returns an empty string.
func (r *Renderer) PublishedText(slug string) string {
	data, err := os.ReadFile(filepath.Join(r.publicDir, slug+".html"))
	if err != nil {
		return ""
	}

	pageURL, _ := url.Parse("https://localhost/" + slug + ".html")
	if article, err := readability.FromReader(bytes.NewReader(data), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}
	return strings.TrimSpace(tagRe.ReplaceAllString(string(data), " "))
}

func loadTemplate(structureType string) (string, error) {
	name := "templates/landing.html"
	switch structureType {
	case "TYPE_A":
		name = "templates/type_a.html"
	case "TYPE_B":
		name = "templates/type_b.html"
	case "TYPE_C":
		name = "templates/type_c.html"
	}
	data, err := templateFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("loading template %s: %w", name, err)
	}
	return string(data), nil
}

// replacements builds the placeholder map. The guidance body is markdown and
// gets converted to HTML; everything else is substituted as-is.
func replacements(doc *content.Document) map[string]string {
	disclaimer := doc.LegalSafety.Disclaimer
	if disclaimer == "" {
		disclaimer = DefaultDisclaimer
	}

	repl := map[string]string{
		"TITLE":            doc.PageMeta.Title,
		"DESCRIPTION":      doc.PageMeta.Description,
		"KEYWORDS":         doc.PageMeta.Keywords,
		"H1":               doc.HeroSection.Headline,
		"INTRO":            doc.HeroSection.IntroCopy,
		"PAIN_POINT":       doc.SituationAnalysis.PainSummary,
		"ACTION_STEPS":     markdownToHTML(doc.ActionGuide.Guidance),
		"LEGAL_DISCLAIMER": disclaimer,
	}

	for i := 0; i < 3; i++ {
		q, a := "", ""
		if i < len(doc.FAQSection) {
			q = doc.FAQSection[i].Question
			a = doc.FAQSection[i].Answer
		}
		repl[fmt.Sprintf("FAQ%d_Q", i+1)] = q
		repl[fmt.Sprintf("FAQ%d_A", i+1)] = a
	}
	return repl
}

func markdownToHTML(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return strings.TrimSpace(buf.String())
}
