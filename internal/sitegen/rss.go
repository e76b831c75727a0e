// RSS feed generation
package sitegen

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// FeedName is the feed's file name in the output root.
const FeedName = "feed.xml"

type RSSGenerator struct {
	baseURL   string
	inputDir  string
	outputDir string
	log       *slog.Logger
}

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`

	published time.Time
}

// NewRSSGenerator creates a new RSS generator
func NewRSSGenerator(baseURL, inputDir, outputDir string, log *slog.Logger) *RSSGenerator {
	return &RSSGenerator{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		inputDir:  inputDir,
		outputDir: outputDir,
		log:       log,
	}
}

// Generate writes a feed of the pages found under root, newest first.
// maxItems of 0 keeps every item.
func (rg *RSSGenerator) Generate(root *DirectoryMetadata, maxItems int) error {
	if rg.baseURL == "" {
		return nil
	}

	items := rg.collectItems(root, nil)
	if len(items) == 0 {
		rg.log.Info("no pages for rss feed")
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].published.After(items[j].published)
	})
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	title := root.Title
	if title == "" {
		title = rg.inferSiteTitle()
	}
	rss := RSS{
		Version: "2.0",
		Channel: Channel{
			Title:         title,
			Link:          rg.baseURL,
			Description:   rg.inferSiteDescription(title),
			Language:      "en-gb",
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         items,
		},
	}
	return rg.writeRSSFile(rss)
}

// collectItems walks the metadata tree and turns every page into an item.
func (rg *RSSGenerator) collectItems(dir *DirectoryMetadata, items []Item) []Item {
	if dir == nil || dir.Hidden {
		return items
	}
	for _, f := range dir.Files {
		if f.Kind != tags.KindMarkup && f.Kind != tags.KindHTML {
			continue
		}
		fullPath := filepath.Join(rg.inputDir, filepath.FromSlash(f.Source))
		content, err := os.ReadFile(fullPath)
		if err != nil {
			rg.log.Warn("skipping page in rss feed", "path", f.Source, "error", err)
			continue
		}
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}

		title := extractTitle(string(content), f.PublicName)
		link := rg.baseURL + "/" + escapePath(f.Output())
		items = append(items, Item{
			Title:       title,
			Link:        link,
			Description: extractDescription(string(content), title),
			PubDate:     info.ModTime().Format(time.RFC1123Z),
			GUID:        link,
			published:   info.ModTime(),
		})
	}
	for _, sub := range dir.Subdirs {
		items = rg.collectItems(sub, items)
	}
	return items
}

// extractTitle returns the first markdown heading or a title made from fallback.
func extractTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
				return title
			}
		}
	}
	stem := strings.TrimSuffix(path.Base(fallback), path.Ext(fallback))
	return humanize(stem)
}

// extractDescription returns up to 200 characters of the first paragraphs
// after the title, truncated at a word boundary.
func extractDescription(content, title string) string {
	var description strings.Builder
	foundTitle := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			foundTitle = true
			continue
		}
		if foundTitle && line != "" {
			if description.Len() > 0 {
				description.WriteString(" ")
			}
			description.WriteString(line)
			if description.Len() >= 200 {
				break
			}
		}
	}

	result := description.String()
	if len(result) > 200 {
		truncated := ""
		for _, word := range strings.Fields(result) {
			if len(truncated)+len(word)+1 > 200 {
				break
			}
			if truncated != "" {
				truncated += " "
			}
			truncated += word
		}
		result = truncated + "..."
	}
	if result == "" {
		result = title
	}
	return result
}

// inferSiteTitle tries the root index.md heading, then the input directory name.
func (rg *RSSGenerator) inferSiteTitle() string {
	if content, err := os.ReadFile(filepath.Join(rg.inputDir, "index.md")); err == nil {
		if title := extractTitle(string(content), "index.md"); title != "Index" {
			return title
		}
	}
	dirName := filepath.Base(rg.inputDir)
	if dirName == "." || dirName == "/" {
		return "Site Feed"
	}
	return humanize(dirName)
}

func (rg *RSSGenerator) inferSiteDescription(title string) string {
	if content, err := os.ReadFile(filepath.Join(rg.inputDir, "index.md")); err == nil {
		if desc := extractDescription(string(content), title); desc != title {
			return desc
		}
	}
	return "Latest posts and updates"
}

// writeRSSFile writes the RSS feed to feed.xml
func (rg *RSSGenerator) writeRSSFile(rss RSS) error {
	rssPath := filepath.Join(rg.outputDir, FeedName)
	file, err := os.Create(rssPath)
	if err != nil {
		return fmt.Errorf("error creating RSS file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(xml.Header); err != nil {
		return fmt.Errorf("error writing RSS header: %w", err)
	}
	encoder := xml.NewEncoder(file)
	encoder.Indent("", "  ")
	if err := encoder.Encode(rss); err != nil {
		return fmt.Errorf("error encoding RSS: %w", err)
	}

	rg.log.Info("generated rss feed", "path", FeedName, "items", len(rss.Channel.Items))
	return nil
}
