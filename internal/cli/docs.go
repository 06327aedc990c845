package cli

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	builtindocs "github.com/realtyfeed/mvquery/docs"
	"github.com/realtyfeed/mvquery/internal/ui"
)

const docsIndexPath = "index.yaml"

var (
	docsSearchLimit   int
	docsSearchSection string

	docsDisplayContext = ui.NewDisplayContext
	docsMarkdownRender = ui.RenderMarkdown
)

type docsSectionView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TopicCount int    `json:"topic_count"`
}

type docsTopicView struct {
	Section string `json:"section"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"path"`
}

type docsSearchMatchView struct {
	Section string `json:"section"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

type docsIndex struct {
	Sections map[string]docsIndexSection `yaml:"sections"`
}

type docsIndexSection struct {
	Title  string                    `yaml:"title"`
	Order  int                       `yaml:"order"`
	Topics map[string]docsIndexTopic `yaml:"topics"`
}

type docsIndexTopic struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
	Path  string `yaml:"path"`
}

// docsLibrary is the resolved docs index: sections and topics in display
// order with titles filled in.
type docsLibrary struct {
	fsys     fs.FS
	sections []docsSectionView
	topics   map[string][]docsTopicView
}

var docsCmd = &cobra.Command{
	Use:   "docs [section] [topic]",
	Short: "Browse the bundled documentation",
	Long: `Browse the Markdown documentation bundled into the mvq binary.

Examples:
  mvq docs
  mvq docs reference
  mvq docs reference operators
  mvq docs search LIMIT`,
	Args:        cobra.RangeArgs(0, 2),
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadDocsLibrary(builtindocs.FS)
		if err != nil {
			return handleError(cmd, ErrInternal, err, "")
		}
		if len(args) == 0 {
			return outputDocsSections(cmd, lib)
		}

		section, ok := lib.section(args[0])
		if !ok {
			return handleError(cmd, ErrDocsTopicNotFound,
				fmt.Errorf("unknown docs section: %s", args[0]),
				"Run 'mvq docs' to list sections")
		}
		if len(args) == 1 {
			return outputDocsTopics(cmd, section, lib.topics[section.ID])
		}

		topic, ok := lib.topic(section.ID, args[1])
		if !ok {
			return handleError(cmd, ErrDocsTopicNotFound,
				fmt.Errorf("unknown topic %q in section %q", args[1], section.ID),
				fmt.Sprintf("Run 'mvq docs %s' to list topics", section.ID))
		}
		return outputDocsTopic(cmd, lib, topic)
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the bundled documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return handleError(cmd, ErrInvalidInput, fmt.Errorf("specify a search query"), "")
		}
		if docsSearchLimit < 1 {
			return handleError(cmd, ErrInvalidInput, fmt.Errorf("--limit must be >= 1"), "")
		}

		lib, err := loadDocsLibrary(builtindocs.FS)
		if err != nil {
			return handleError(cmd, ErrInternal, err, "")
		}
		matches, err := lib.search(query, docsSearchSection, docsSearchLimit)
		if err != nil {
			return handleError(cmd, ErrDocsTopicNotFound, err, "Run 'mvq docs' to list sections")
		}

		if isJSONOutput() {
			outputSuccess(cmd, map[string]interface{}{
				"query":   query,
				"matches": matches,
			}, &Meta{Count: len(matches)})
			return nil
		}

		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(out, "No docs matched %q.\n", query)
			return nil
		}
		fmt.Fprintln(out, ui.Header(fmt.Sprintf("Matches for %q", query)))
		for _, m := range matches {
			fmt.Fprintf(out, "  %s:%d  %s\n", ui.Accent.Render(m.Section+"/"+m.Topic), m.Line, m.Snippet)
		}
		return nil
	},
}

func outputDocsSections(cmd *cobra.Command, lib *docsLibrary) error {
	if isJSONOutput() {
		outputSuccess(cmd, map[string]interface{}{"sections": lib.sections}, &Meta{Count: len(lib.sections)})
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Header("Documentation"))
	for _, s := range lib.sections {
		fmt.Fprintf(out, "  %-24s %s %s\n", "mvq docs "+s.ID, s.Title, ui.Count(s.TopicCount, "topic", "topics"))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Hint("mvq docs search <query> searches every topic"))
	return nil
}

func outputDocsTopics(cmd *cobra.Command, section docsSectionView, topics []docsTopicView) error {
	if isJSONOutput() {
		outputSuccess(cmd, map[string]interface{}{
			"section": section.ID,
			"title":   section.Title,
			"topics":  topics,
		}, &Meta{Count: len(topics)})
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Header(section.Title))
	for _, t := range topics {
		fmt.Fprintf(out, "  %-40s %s\n", fmt.Sprintf("mvq docs %s %s", section.ID, t.ID), t.Title)
	}
	return nil
}

func outputDocsTopic(cmd *cobra.Command, lib *docsLibrary, topic docsTopicView) error {
	content, err := fs.ReadFile(lib.fsys, topic.Path)
	if err != nil {
		return handleError(cmd, ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(cmd, map[string]interface{}{
			"section": topic.Section,
			"topic":   topic.ID,
			"title":   topic.Title,
			"content": string(content),
		}, nil)
		return nil
	}

	out := cmd.OutOrStdout()
	rendered := string(content)
	display := docsDisplayContext(out)
	if display.IsTTY {
		if md, err := docsMarkdownRender(rendered, display.TermWidth); err == nil {
			rendered = md
		}
	}
	fmt.Fprint(out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

// loadDocsLibrary reads index.yaml from fsys and checks every topic file.
func loadDocsLibrary(fsys fs.FS) (*docsLibrary, error) {
	raw, err := fs.ReadFile(fsys, docsIndexPath)
	if err != nil {
		return nil, fmt.Errorf("read docs index: %w", err)
	}
	var index docsIndex
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&index); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse docs index: %w", err)
	}
	if len(index.Sections) == 0 {
		return nil, fmt.Errorf("docs index has no sections")
	}

	lib := &docsLibrary{fsys: fsys, topics: make(map[string][]docsTopicView)}
	order := make(map[string]int)
	for id, meta := range index.Sections {
		if docsSlug(id) != id {
			return nil, fmt.Errorf("section id %q must be a slug", id)
		}
		topics, err := loadDocsTopics(fsys, id, meta)
		if err != nil {
			return nil, err
		}
		title := meta.Title
		if title == "" {
			title = titleFromSlug(id)
		}
		lib.sections = append(lib.sections, docsSectionView{ID: id, Title: title, TopicCount: len(topics)})
		lib.topics[id] = topics
		order[id] = meta.Order
	}
	sort.Slice(lib.sections, func(i, j int) bool {
		a, b := lib.sections[i].ID, lib.sections[j].ID
		if order[a] != order[b] {
			return order[a] < order[b]
		}
		return a < b
	})
	return lib, nil
}

func loadDocsTopics(fsys fs.FS, section string, meta docsIndexSection) ([]docsTopicView, error) {
	if len(meta.Topics) == 0 {
		return nil, fmt.Errorf("section %q has no topics", section)
	}
	topics := make([]docsTopicView, 0, len(meta.Topics))
	order := make(map[string]int)
	for id, tm := range meta.Topics {
		if docsSlug(id) != id {
			return nil, fmt.Errorf("topic id %q in section %q must be a slug", id, section)
		}
		p := path.Clean(strings.TrimSpace(tm.Path))
		if tm.Path == "" || path.Ext(p) != ".md" || strings.HasPrefix(p, "../") || path.IsAbs(p) {
			return nil, fmt.Errorf("topic %q in section %q has invalid path %q", id, section, tm.Path)
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("topic %q in section %q: %w", id, section, err)
		}
		title := tm.Title
		if title == "" {
			title = markdownTitle(content)
		}
		if title == "" {
			title = titleFromSlug(id)
		}
		topics = append(topics, docsTopicView{Section: section, ID: id, Title: title, Path: p})
		order[id] = tm.Order
	}
	sort.Slice(topics, func(i, j int) bool {
		a, b := topics[i].ID, topics[j].ID
		if order[a] != order[b] {
			return order[a] < order[b]
		}
		return a < b
	})
	return topics, nil
}

func (l *docsLibrary) section(raw string) (docsSectionView, bool) {
	needle := docsSlug(raw)
	for _, s := range l.sections {
		if s.ID == needle {
			return s, true
		}
	}
	return docsSectionView{}, false
}

func (l *docsLibrary) topic(section, raw string) (docsTopicView, bool) {
	needle := docsSlug(strings.TrimSuffix(strings.TrimSpace(raw), ".md"))
	for _, t := range l.topics[section] {
		if t.ID == needle {
			return t, true
		}
	}
	return docsTopicView{}, false
}

func (l *docsLibrary) search(query, sectionFilter string, limit int) ([]docsSearchMatchView, error) {
	sections := l.sections
	if strings.TrimSpace(sectionFilter) != "" {
		s, ok := l.section(sectionFilter)
		if !ok {
			return nil, fmt.Errorf("unknown section: %s", sectionFilter)
		}
		sections = []docsSectionView{s}
	}

	needle := strings.ToLower(query)
	matches := make([]docsSearchMatchView, 0)
	for _, s := range sections {
		for _, t := range l.topics[s.ID] {
			content, err := fs.ReadFile(l.fsys, t.Path)
			if err != nil {
				return nil, err
			}
			for i, line := range strings.Split(string(content), "\n") {
				if !strings.Contains(strings.ToLower(line), needle) {
					continue
				}
				matches = append(matches, docsSearchMatchView{
					Section: s.ID,
					Topic:   t.ID,
					Title:   t.Title,
					Line:    i + 1,
					Snippet: ui.TruncateWithEllipsis(strings.TrimSpace(line), 120),
				})
				if len(matches) >= limit {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}

// docsSlug normalizes a user-typed section or topic name.
func docsSlug(s string) string {
	return slug.Make(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(src []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = inlineText(h, src)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func titleFromSlug(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func init() {
	docsSearchCmd.Flags().IntVarP(&docsSearchLimit, "limit", "n", 20, "Maximum number of matches")
	docsSearchCmd.Flags().StringVarP(&docsSearchSection, "section", "s", "", "Only search one section")

	docsCmd.AddCommand(docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}
