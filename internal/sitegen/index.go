// index.go - Breadcrumbs and directory listings
package sitegen

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// humanize turns a kebab or snake case name into a display title.
func humanize(name string) string {
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.Und, cases.NoLower).String(name)
}

// escapePath escapes every segment of a slash-separated path for use in a URL.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func splitDir(dir string) []string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

// Breadcrumb renders the trail from the site root through dir. When leaf is
// set it is appended as the final crumb, linked relative to dir.
func Breadcrumb(dir, leaf string) string {
	var b strings.Builder
	b.WriteString(`<ul><li><a href="/">home</a></li>`)
	parts := splitDir(dir)
	for i, part := range parts {
		href := "/" + escapePath(strings.Join(parts[:i+1], "/")) + "/"
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, html.EscapeString(href), html.EscapeString(humanize(part)))
	}
	if leaf != "" {
		href := "/" + escapePath(path.Join(append(parts, leaf)...))
		stem := strings.TrimSuffix(leaf, path.Ext(leaf))
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, html.EscapeString(href), html.EscapeString(humanize(stem)))
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// FileListing renders a directory's files: highlighted images first, then
// videos, then the remaining images, then every other file as a link.
func FileListing(files []*FileMetadata) string {
	var special, images, videos, others []*FileMetadata
	for _, f := range files {
		switch f.Kind {
		case tags.KindImage:
			if f.Tags.Has(tags.Special) {
				special = append(special, f)
			} else {
				images = append(images, f)
			}
		case tags.KindVideo:
			videos = append(videos, f)
		default:
			others = append(others, f)
		}
	}
	return renderGallery(special, "special") +
		renderVideoGallery(videos) +
		renderGallery(images, "") +
		renderFileList(others)
}

func renderGallery(images []*FileMetadata, className string) string {
	if len(images) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<div class='image-gallery %s'>\n", className)
	for _, img := range images {
		src := html.EscapeString(escapePath(img.PublicName))
		fmt.Fprintf(&b, "<div class='image %s'><a href='%s'><img src='%s' alt='%s'></a></div>\n",
			className, src, src, html.EscapeString(img.Tags.Get("alt")))
	}
	b.WriteString("</div>\n")
	return b.String()
}

func renderVideoGallery(videos []*FileMetadata) string {
	if len(videos) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<div class='video-gallery'>\n")
	for _, v := range videos {
		fmt.Fprintf(&b, "<div class='video'><video controls><source src=\"%s\" type=\"video/mp4\"></video></div>\n",
			html.EscapeString(escapePath(v.PublicName)))
	}
	b.WriteString("</div>\n")
	return b.String()
}

func renderFileList(files []*FileMetadata) string {
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul class='file-list'>\n")
	for _, f := range files {
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n",
			html.EscapeString(escapePath(f.PublicName)), html.EscapeString(f.PublicName))
	}
	b.WriteString("</ul>\n")
	return b.String()
}

// SubdirListing renders links to visible subdirectories, with their thumbnail
// when one was selected.
func SubdirListing(dirs []*DirectoryMetadata) string {
	var b strings.Builder
	for _, d := range dirs {
		if d == nil || d.Hidden {
			continue
		}
		href := html.EscapeString(escapePath(d.Name) + "/")
		label := html.EscapeString(d.DisplayName())
		if d.Thumbnail != "" {
			thumb := html.EscapeString(escapePath(path.Join(d.Name, d.Thumbnail)))
			fmt.Fprintf(&b, "<li><a href=\"%s\"><img src=\"%s\" class=\"thumbnail\">%s</a></li>\n", href, thumb, label)
		} else {
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", href, label)
		}
	}
	return b.String()
}
