package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	goorg "github.com/niklasfasching/go-org/org"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects the report markup.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatOrg      Format = "org"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned for report formats other than markdown, org and html.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name, accepting "md" for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "org":
		return FormatOrg, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Render writes the summary to w in the given format.
func Render(w io.Writer, s *Summary, format Format) error {
	var (
		out string
		err error
	)
	switch format {
	case FormatMarkdown:
		out = Markdown(s)
	case FormatOrg:
		out, err = Org(s)
	case FormatHTML:
		out, err = HTML(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Markdown renders the summary as GitHub-flavored markdown.
func Markdown(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "- Meshes: %d\n- Materials: %d\n- Vertices: %d\n- Faces: %d\n\n",
		len(s.Meshes), len(s.Materials), s.Vertices, s.Faces)

	b.WriteString("## Hierarchy\n\n")
	for _, n := range s.Tree {
		fmt.Fprintf(&b, "%s- %s", strings.Repeat("  ", n.Depth), mdCode(n.Name))
		if n.Meshes > 0 {
			fmt.Fprintf(&b, " (%d meshes)", n.Meshes)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(s.Meshes) > 0 {
		b.WriteString("## Meshes\n\n")
		b.WriteString("| Name | Vertices | Faces | UV channels | Colors | Bones | Material |\n")
		b.WriteString("|---|---:|---:|---:|---|---:|---|\n")
		for _, m := range s.Meshes {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s | %d | %s |\n",
				mdCode(m.Name), m.Vertices, m.Faces, m.UVChannels, yesNo(m.HasColors), m.Bones, mdCode(m.Material))
		}
		b.WriteString("\n")
	}

	if len(s.Materials) > 0 {
		b.WriteString("## Materials\n\n")
		b.WriteString("| Name | Shading | Textures |\n|---|---|---|\n")
		for _, m := range s.Materials {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCode(m.Name), m.Shading, cell(strings.Join(m.Textures, "; ")))
		}
		b.WriteString("\n")
	}

	if a := s.Animation; a != nil {
		b.WriteString("## Animation\n\n")
		fmt.Fprintf(&b, "- Channels: %d\n- Duration: %g ticks (%.2fs)\n- Ticks per second: %g\n\n",
			a.Channels, a.Duration, a.Seconds(), a.TicksPerSecond)
	}

	if len(s.Textures) > 0 {
		b.WriteString("## Textures\n\n")
		b.WriteString("| Map | File | Size | Used by |\n|---|---|---|---|\n")
		for _, t := range s.Textures {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(t.Map), cell(textureFile(t)), textureSize(t), cell(t.Materials))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report to an HTML fragment.
func HTML(s *Summary) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(s)), &buf); err != nil {
		return "", fmt.Errorf("report: render html: %w", err)
	}
	return buf.String(), nil
}

// Org renders the summary as an Org-mode document. The text is passed
// through the go-org writer so tables come out aligned.
func Org(s *Summary) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "#+TITLE: %s\n\n", s.Title)
	fmt.Fprintf(&b, "- Meshes :: %d\n- Materials :: %d\n- Vertices :: %d\n- Faces :: %d\n\n",
		len(s.Meshes), len(s.Materials), s.Vertices, s.Faces)

	b.WriteString("* Hierarchy\n")
	for _, n := range s.Tree {
		fmt.Fprintf(&b, "%s- %s", strings.Repeat("  ", n.Depth), orgCode(n.Name))
		if n.Meshes > 0 {
			fmt.Fprintf(&b, " (%d meshes)", n.Meshes)
		}
		b.WriteString("\n")
	}

	if len(s.Meshes) > 0 {
		b.WriteString("* Meshes\n")
		b.WriteString("| Name | Vertices | Faces | UV channels | Colors | Bones | Material |\n|-\n")
		for _, m := range s.Meshes {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s | %d | %s |\n",
				orgCode(m.Name), m.Vertices, m.Faces, m.UVChannels, yesNo(m.HasColors), m.Bones, orgCode(m.Material))
		}
	}

	if len(s.Materials) > 0 {
		b.WriteString("* Materials\n")
		b.WriteString("| Name | Shading | Textures |\n|-\n")
		for _, m := range s.Materials {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", orgCode(m.Name), m.Shading, cell(strings.Join(m.Textures, "; ")))
		}
	}

	if a := s.Animation; a != nil {
		b.WriteString("* Animation\n")
		fmt.Fprintf(&b, "- Channels :: %d\n- Duration :: %g ticks (%.2fs)\n- Ticks per second :: %g\n",
			a.Channels, a.Duration, a.Seconds(), a.TicksPerSecond)
	}

	if len(s.Textures) > 0 {
		b.WriteString("* Textures\n")
		b.WriteString("| Map | File | Size | Used by |\n|-\n")
		for _, t := range s.Textures {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(t.Map), cell(textureFile(t)), textureSize(t), cell(t.Materials))
		}
	}

	doc := goorg.New().Parse(strings.NewReader(b.String()), "")
	out, err := doc.Write(goorg.NewOrgWriter())
	if err != nil {
		return "", fmt.Errorf("report: render org: %w", err)
	}
	return out, nil
}

func textureFile(t TextureInfo) string {
	if t.Error != "" {
		return "missing"
	}
	return t.Path
}

func textureSize(t TextureInfo) string {
	if t.Error != "" {
		return "-"
	}
	return fmt.Sprintf("%dx%d", t.Width, t.Height)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// cell keeps table cells on one column.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}

func mdCode(s string) string {
	if s == "" {
		return ""
	}
	return "`" + cell(strings.ReplaceAll(s, "`", "'")) + "`"
}

func orgCode(s string) string {
	if s == "" {
		return ""
	}
	return "~" + cell(strings.ReplaceAll(s, "~", "-")) + "~"
}
