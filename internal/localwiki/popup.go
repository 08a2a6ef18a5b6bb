package localwiki

import (
	"fmt"
	"strings"
)

// NotCollected is the popup for a mural whose page could not be fetched.
const NotCollected = "not collected"

// Popup renders the marker pop-up HTML for a mural: a link to its page,
// the artist credit (or a request for one), the image, and two footer links.
func Popup(entry IndexEntry, page *Page, creditHelpURL string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<a href="%s" target="blank">%s</a><br>`, entry.PageURL, entry.Name)

	switch {
	case page.Artist != "" && page.ArtistLink != "":
		fmt.Fprintf(&sb, `by <a href="%s" target="blank">%s</a><br>`, page.ArtistLink, page.Artist)
	case page.Artist != "":
		fmt.Fprintf(&sb, `by %s<br>`, page.Artist)
	default:
		fmt.Fprintf(&sb, `Help us <a href="%s" target="blank">give credit</a> to the artist.<br>`, creditHelpURL)
	}

	fmt.Fprintf(&sb, `<a href="%s" target="blank"><img src="%s"></a><br>`, page.ImageInfoURL, page.ImageURL)
	fmt.Fprintf(&sb, `<a href="%s" target="blank">More info&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;</a>`, entry.PageURL)
	fmt.Fprintf(&sb, `<a href="%s" target="blank">Larger image</a>`, page.ImageInfoURL)

	return sb.String()
}
