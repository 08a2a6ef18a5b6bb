package localwiki

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// NoImageURL is shown when a mural page has no usable image.
const NoImageURL = "https://upload.wikimedia.org/wikipedia/commons/a/ac/No_image_available.svg"

// Tag prefixes the Oakland Art Murmur editors leave on mural pages.
const (
	tagFavoredImage = "oam_uses_"
	tagNotVisible   = "not currently visible"
	tagArtist       = "artist"
)

// Site locates the wiki being scraped.
type Site struct {
	IndexURL string // the murals index page
	BaseURL  string // wiki root, with trailing slash
	SiteURL  string // scheme and host, for site-relative links
}

// Page is what a single mural page says about the mural.
type Page struct {
	FavoredImage string
	NotVisible   bool
	Artist       string
	ArtistLink   string
	ImageURL     string
	ImageInfoURL string
}

// ParsePage reads the wiki tags and image frames of a mural page.
func ParsePage(r io.Reader, site Site) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{}
	tags := collect(doc, func(n *html.Node) bool {
		return n.Data == "li" && hasClass(n, "tag")
	})

	var texts []string
	for _, t := range tags {
		texts = append(texts, strings.TrimSpace(textOf(t)))
	}

	for _, text := range texts {
		lower := strings.ToLower(text)
		switch {
		case strings.HasPrefix(lower, tagFavoredImage):
			if name := strings.TrimLeft(text[len(tagFavoredImage):], "_ "); name != "" {
				p.FavoredImage = name
			}
		case strings.HasPrefix(lower, tagNotVisible):
			p.NotVisible = true
		case strings.HasPrefix(lower, tagArtist):
			artist := strings.TrimSpace(strings.TrimLeft(text[len(tagArtist):], ":_- "))
			if artist == "" {
				continue
			}
			p.Artist = artist
			for _, other := range texts {
				if strings.EqualFold(other, artist) {
					p.ArtistLink = site.BaseURL + "tags/" + strings.ReplaceAll(strings.ToLower(other), " ", "")
				}
			}
		}
	}

	frames := collect(doc, func(n *html.Node) bool {
		return n.Data == "span" && hasClass(n, "image_frame")
	})
	p.ImageURL, p.ImageInfoURL = pickImage(frames, p.FavoredImage, site)
	return p, nil
}

// pickImage prefers the frame linking to the favoured image, then the first
// frame, then the "no image" placeholder.
func pickImage(frames []*html.Node, favored string, site Site) (image, info string) {
	if favored != "" {
		// A file suffix on the tag is ignored.
		stem, _, _ := strings.Cut(favored, ".")
		for _, frame := range frames {
			for _, a := range collect(frame, isElement("a")) {
				if !strings.Contains(attr(a, "href"), stem) {
					continue
				}
				if img := first(a, isElement("img")); img != nil {
					return site.SiteURL + attr(img, "src"), site.SiteURL + attr(a, "href")
				}
			}
		}
	}

	if len(frames) > 0 {
		if a := first(frames[0], isElement("a")); a != nil {
			if img := first(a, isElement("img")); img != nil {
				return site.SiteURL + attr(img, "src"), site.SiteURL + attr(a, "href")
			}
		}
	}
	return NoImageURL, site.IndexURL
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == name }
}

// collect returns the element descendants of n matching pred, in document order.
func collect(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func first(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if found := collect(n, pred); len(found) > 0 {
		return found[0]
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
