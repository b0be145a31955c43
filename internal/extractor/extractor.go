package extractor

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// GeneralContentLimit caps the catch-all body text to avoid duplicating
// content already captured by the per-section documents.
const GeneralContentLimit = 2000

// section identifies a logical block of the portfolio main page.
type section struct {
	ID   string
	Name string
}

// mainSections lists the main page sections in extraction order. A
// section missing from the page is skipped, never an error.
var mainSections = []section{
	{ID: "hero", Name: "Hero/Introduction"},
	{ID: "about", Name: "About"},
	{ID: "projects", Name: "Projects Overview"},
	{ID: "work-experience", Name: "Work Experience"},
	{ID: "skills", Name: "Skills"},
	{ID: "contact", Name: "Contact"},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Boilerplate phrases stripped from every extracted text block.
	noiseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Skip to main content`),
		regexp.MustCompile(`(?i)Toggle navigation`),
		regexp.MustCompile(`(?i)Copyright.*`),
		regexp.MustCompile(`(?i)All rights reserved.*`),
	}

	projectDetailRe = regexp.MustCompile(`(?i)(tech|skill|tool|language|framework)`)
	workDetailRe    = regexp.MustCompile(`(?i)(role|position|company|duration|responsibility)`)
)

// Extractor pulls cleaned, structured text out of portfolio pages.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// MainPage extracts one document per located section of the main page,
// plus a general catch-all document and a GitHub-references document.
func (e *Extractor) MainPage(baseURL, htmlContent string) ([]models.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse main page: %w", err)
	}

	var docs []models.Document

	for _, sec := range mainSections {
		sel := findSection(doc, sec.ID)
		if sel == nil {
			slog.Debug("section not found, skipping", "section", sec.ID)
			continue
		}

		content := CleanText(sel.Text())
		structured := structuredContent(sel)

		full := fmt.Sprintf("=== %s Section ===\n\n%s", sec.Name, content)
		if structured != "" {
			full += "\n\nStructured Information:\n" + structured
		}

		docs = append(docs, models.Document{
			Content: full,
			Metadata: models.Metadata{
				Source:  "portfolio_main_page",
				URL:     baseURL,
				Section: sec.ID,
			},
		})
	}

	if general := e.generalContent(doc, baseURL); general != nil {
		docs = append(docs, *general)
	}
	if refs := e.githubReferences(doc, baseURL); refs != nil {
		docs = append(docs, *refs)
	}

	return docs, nil
}

// DetailPage extracts a single document from a project or work detail
// page. pageType is "project_detail" or "work_detail".
func (e *Extractor) DetailPage(pageURL, htmlContent, pageType string) (*models.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page %s: %w", pageURL, err)
	}

	name := pageName(pageURL, doc)
	content := CleanText(doc.Text())

	var heading, detailsLabel string
	var classRe *regexp.Regexp
	var infoPrefix string
	if pageType == "work_detail" {
		heading = "Work Experience"
		detailsLabel = "Work Details"
		classRe = workDetailRe
		infoPrefix = "Work Info"
	} else {
		heading = "Project"
		detailsLabel = "Project Details"
		classRe = projectDetailRe
		infoPrefix = "Technology/Tool"
	}

	structured := detailContent(doc, classRe, infoPrefix, pageType)

	full := fmt.Sprintf("=== %s: %s ===\n\n%s", heading, name, content)
	if structured != "" {
		full += fmt.Sprintf("\n\n%s:\n%s", detailsLabel, structured)
	}

	source := "portfolio_project"
	if pageType == "work_detail" {
		source = "portfolio_work"
	}

	return &models.Document{
		Content: full,
		Metadata: models.Metadata{
			Source: source,
			URL:    pageURL,
			Type:   pageType,
		},
	}, nil
}

// findSection locates a section by id first, then by class name.
func findSection(doc *goquery.Document, id string) *goquery.Selection {
	selectors := []string{
		fmt.Sprintf("section#%s", id),
		fmt.Sprintf("div#%s", id),
		fmt.Sprintf("section.%s", id),
		fmt.Sprintf("div.%s", id),
	}
	for _, sel := range selectors {
		if s := doc.Find(sel); s.Length() > 0 {
			return s.First()
		}
	}
	return nil
}

// structuredContent re-serializes headings, list items, and data-skill
// attributes from a section into a secondary text block.
func structuredContent(sel *goquery.Selection) string {
	var lines []string

	sel.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		text := CleanText(h.Text())
		if text == "" {
			return
		}
		level := int(h.Nodes[0].Data[1] - '0')
		lines = append(lines, strings.Repeat("#", level)+" "+text)
	})

	sel.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		lines = append(lines, "List:")
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := CleanText(li.Text()); text != "" {
				lines = append(lines, "  • "+text)
			}
		})
	})

	sel.Find("[data-skill]").Each(func(_ int, el *goquery.Selection) {
		if skill, ok := el.Attr("data-skill"); ok && skill != "" {
			lines = append(lines, "Skill: "+skill)
		}
	})

	return strings.Join(lines, "\n")
}

// detailContent extracts structured details from a detail page: elements
// whose class matches the given pattern, plus all lists.
func detailContent(doc *goquery.Document, classRe *regexp.Regexp, infoPrefix, pageType string) string {
	var lines []string

	doc.Find("div[class], section[class], span[class]").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		if !classRe.MatchString(class) {
			return
		}
		if text := CleanText(el.Text()); text != "" {
			lines = append(lines, infoPrefix+": "+text)
		}
	})

	listLabel := "Features/Details:"
	if pageType == "work_detail" {
		listLabel = "Responsibilities/Achievements:"
	}
	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		lines = append(lines, listLabel)
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := CleanText(li.Text()); text != "" {
				lines = append(lines, "  • "+text)
			}
		})
	})

	return strings.Join(lines, "\n")
}

// generalContent captures page title, meta description, and a truncated
// body text block not tied to any particular section.
func (e *Extractor) generalContent(doc *goquery.Document, baseURL string) *models.Document {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}

	title := CleanText(doc.Find("title").Text())
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")

	allText := CleanText(body.Text())
	if len(allText) > GeneralContentLimit {
		allText = allText[:GeneralContentLimit] + "..."
	}

	content := "=== Portfolio Website General Information ===\n\n"
	content += "Title: " + title + "\n"
	if desc != "" {
		content += "Description: " + desc + "\n"
	}
	content += "\nFull page context for reference:\n" + allText

	return &models.Document{
		Content: content,
		Metadata: models.Metadata{
			Source: "portfolio_general",
			URL:    baseURL,
			Type:   "general_context",
		},
	}
}

// githubReferences collects github.com links from the projects section.
func (e *Extractor) githubReferences(doc *goquery.Document, baseURL string) *models.Document {
	projects := doc.Find("section#projects")
	if projects.Length() == 0 {
		return nil
	}

	var links []string
	projects.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.Contains(href, "github.com") {
			links = append(links, href)
		}
	})
	if len(links) == 0 {
		return nil
	}

	content := "=== GitHub Projects Referenced in Portfolio ===\n\n"
	content += "Projects showcased in the portfolio with GitHub repositories:\n\n"
	for _, link := range links {
		name := strings.TrimSuffix(link[strings.LastIndex(link, "/")+1:], ".git")
		name = titleCase(strings.ReplaceAll(name, "-", " "))
		content += fmt.Sprintf("• %s: %s\n", name, link)
	}

	return &models.Document{
		Content: content,
		Metadata: models.Metadata{
			Source: "portfolio_github_projects",
			URL:    baseURL,
			Type:   "project_references",
		},
	}
}

// pageName derives a readable page name from the <title> tag, falling
// back to the URL slug.
func pageName(pageURL string, doc *goquery.Document) string {
	title := CleanText(doc.Find("title").Text())
	if title != "" && title != "Qudus Abolade" {
		return title
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return "Unknown Page"
	}
	slug := u.Path[strings.LastIndex(u.Path, "/")+1:]
	slug = strings.TrimSuffix(slug, ".html")
	slug = strings.ReplaceAll(slug, "-", " ")
	if slug == "" {
		return "Unknown Page"
	}
	return titleCase(slug)
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CleanText collapses whitespace and strips known boilerplate phrases.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	for _, re := range noiseRes {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
