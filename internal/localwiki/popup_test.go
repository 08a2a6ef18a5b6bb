package localwiki

import (
	"strings"
	"testing"
)

func TestPopup_WithArtistLink(t *testing.T) {
	entry := IndexEntry{Name: "Some Mural", PageURL: "https://localwiki.org/oakland/Some_Mural"}
	page := &Page{
		Artist:       "Jane Doe",
		ArtistLink:   "https://localwiki.org/oakland/tags/janedoe",
		ImageURL:     "https://localwiki.org/media/a.jpg",
		ImageInfoURL: "https://localwiki.org/oakland/Some_Mural/_files/a.jpg/_info/",
	}

	got := Popup(entry, page, "https://example.org/credit")

	for _, want := range []string{
		`<a href="https://localwiki.org/oakland/Some_Mural" target="blank">Some Mural</a><br>`,
		`by <a href="https://localwiki.org/oakland/tags/janedoe" target="blank">Jane Doe</a><br>`,
		`<img src="https://localwiki.org/media/a.jpg">`,
		`Larger image</a>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("popup missing %q:\n%s", want, got)
		}
	}
}

func TestPopup_ArtistVariants(t *testing.T) {
	entry := IndexEntry{Name: "M", PageURL: "u"}

	named := Popup(entry, &Page{Artist: "Anon Crew"}, "https://example.org/credit")
	if !strings.Contains(named, "by Anon Crew<br>") {
		t.Errorf("expected plain artist credit, got %s", named)
	}

	unknown := Popup(entry, &Page{}, "https://example.org/credit")
	if !strings.Contains(unknown, `Help us <a href="https://example.org/credit" target="blank">give credit</a>`) {
		t.Errorf("expected credit request, got %s", unknown)
	}
}
