package compliance

import (
	"embed"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/sgex-ci/prcomment/internal/githubapi"
	"github.com/sgex-ci/prcomment/internal/managed"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templatesFS, "templates/compliance_report.md.tmpl"))

// DefaultMarker tags the compliance report comment.
const DefaultMarker = "<!-- sgex-compliance-report-comment -->"

// DefaultFooter closes every compliance report comment.
const DefaultFooter = "This comment is automatically updated when compliance checks run."

// topN caps the nested-layout and missing-PageLayout sections.
const topN = 5

// Input is the caller-supplied data of a report comment.
type Input struct {
	Repo        string
	CommitSHA   string
	WorkflowURL string
	Report      Report
}

// RenderInput adds the rendering environment to Input.
type RenderInput struct {
	Input
	Marker string
	Now    time.Time
	Policy managed.URLPolicy
	Footer string
}

type item struct {
	Glyph  string
	Name   string
	URL    string
	Suffix string
}

type section struct {
	Title string
	Items []item
	More  int
}

type view struct {
	Marker      string
	ShortSHA    string
	CommitURL   string
	WorkflowURL string
	DocsURL     string
	Compliance  string
	Generated   string
	Status      string

	Total           int
	Compliant       int
	Partial         int
	NonCompliant    int
	CompliantPct    int
	PartialPct      int
	NonCompliantPct int

	Sections     []section
	VerdictTitle string
	VerdictText  string
	Footer       string
}

// Render builds the compliance comment body.
func Render(in RenderInput) (string, error) {
	owner, name, err := githubapi.SplitRepo(in.Repo)
	if err != nil {
		return "", err
	}
	policy := in.Policy
	if policy.IsZero() {
		policy = managed.DefaultURLPolicy()
	}

	sha := managed.SanitizeInline(strings.TrimSpace(in.CommitSHA), managed.MaxSHALength)
	ref, short := "HEAD", "unknown"
	if sha != "" {
		ref, short = sha, sha
		if r := []rune(sha); len(r) > 7 {
			short = string(r[:7])
		}
	}
	links := linkBuilder{owner: owner, name: name, ref: ref}

	s := in.Report.Summary
	v := &view{
		Marker:       in.Marker,
		ShortSHA:     short,
		WorkflowURL:  policy.Sanitize(in.WorkflowURL),
		DocsURL:      links.blob("public/docs/page-framework.md"),
		Compliance:   strconv.FormatFloat(s.OverallCompliance, 'f', -1, 64),
		Generated:    in.Now.UTC().Format("2006-01-02 15:04:05 UTC"),
		Status:       StatusLabel(s.OverallCompliance),
		Total:        s.Total,
		Compliant:    s.Compliant,
		Partial:      s.PartiallyCompliant,
		NonCompliant: s.NonCompliant,

		CompliantPct:    percent(s.Compliant, s.Total),
		PartialPct:      percent(s.PartiallyCompliant, s.Total),
		NonCompliantPct: percent(s.NonCompliant, s.Total),
		Footer:          managed.SanitizeInline(in.Footer, managed.MaxDefaultLength),
	}
	if sha != "" {
		v.CommitURL = links.commit()
	}
	if v.Footer == "" {
		v.Footer = DefaultFooter
	}
	v.Sections = buildSections(in.Report.Results, links)

	switch {
	case s.NonCompliant > 0:
		v.VerdictTitle = "❌ Action Required"
		v.VerdictText = "Fix non-compliant components before merging."
	case s.PartiallyCompliant > 0:
		v.VerdictTitle = "⚠️ Recommendations"
		v.VerdictText = "Consider addressing partial compliance issues to improve code quality."
	default:
		v.VerdictTitle = "✅ All Clear!"
		v.VerdictText = "All components are fully compliant with the framework standards."
	}

	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, v); err != nil {
		return "", fmt.Errorf("execute compliance template: %w", err)
	}
	return sb.String(), nil
}

func buildSections(r Results, links linkBuilder) []section {
	var out []section

	nested := filter(r.PartiallyCompliant, "layout components")
	if len(nested) > 0 {
		sorted := slices.Clone(nested)
		slices.SortStableFunc(sorted, func(a, b Component) int {
			return LayoutCount(b) - LayoutCount(a)
		})
		sec := section{Title: fmt.Sprintf("📦 Nested Layouts (%d components)", len(nested))}
		for _, c := range sorted[:min(topN, len(sorted))] {
			count := "?"
			if len(c.Issues) > 0 {
				if m := reLayoutFound.FindStringSubmatch(c.Issues[0]); m != nil {
					count = m[1]
				}
			}
			sec.Items = append(sec.Items, links.item("🟠", c, fmt.Sprintf(" (%s layouts)", count)))
		}
		sec.More = max(0, len(nested)-topN)
		out = append(out, sec)
	}

	missing := filter(r.PartiallyCompliant, "Missing PageLayout")
	if len(missing) > 0 {
		sec := section{Title: fmt.Sprintf("📄 Missing PageLayout (%d components)", len(missing))}
		for _, c := range missing[:min(topN, len(missing))] {
			sec.Items = append(sec.Items, links.item("🟠", c, ""))
		}
		sec.More = max(0, len(missing)-topN)
		out = append(out, sec)
	}

	headers := filter(r.PartiallyCompliant, "custom header")
	if len(headers) > 0 {
		sec := section{Title: fmt.Sprintf("🎨 Custom Headers (%d components)", len(headers))}
		for _, c := range headers {
			sec.Items = append(sec.Items, links.item("🟠", c, ""))
		}
		out = append(out, sec)
	}

	if len(r.NonCompliant) > 0 {
		sec := section{Title: fmt.Sprintf("🔴 Non-Compliant Components (%d)", len(r.NonCompliant))}
		for _, c := range r.NonCompliant {
			issues := make([]string, 0, len(c.Issues))
			for _, issue := range c.Issues {
				issues = append(issues, managed.SanitizeInline(issue, managed.MaxErrorLength))
			}
			suffix := ""
			if len(issues) > 0 {
				suffix = ": " + strings.Join(issues, ", ")
			}
			sec.Items = append(sec.Items, links.item("🔴", c, suffix))
		}
		out = append(out, sec)
	}

	return out
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// linkBuilder makes github.com links into one repository at one ref.
type linkBuilder struct {
	owner, name, ref string
}

func (l linkBuilder) base() string {
	return "https://github.com/" + url.PathEscape(l.owner) + "/" + url.PathEscape(l.name)
}

func (l linkBuilder) commit() string {
	return l.base() + "/commit/" + url.PathEscape(l.ref)
}

func (l linkBuilder) blob(path string) string {
	return l.base() + "/blob/" + url.PathEscape(l.ref) + "/" + path
}

// escapeSegments escapes each slash-separated segment of a relative path.
func escapeSegments(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (l linkBuilder) item(glyph string, c Component, suffix string) item {
	name := managed.SanitizeInline(c.Name, managed.MaxLabelLength)
	return item{
		Glyph:  glyph,
		Name:   name,
		URL:    l.blob("src/components/" + escapeSegments(c.Name) + ".js"),
		Suffix: suffix,
	}
}
