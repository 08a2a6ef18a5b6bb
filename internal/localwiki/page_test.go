package localwiki

import (
	"strings"
	"testing"
)

var testSite = Site{
	IndexURL: "https://localwiki.org/oakland/Murals",
	BaseURL:  "https://localwiki.org/oakland/",
	SiteURL:  "https://localwiki.org",
}

const pageFixture = `<html><body>
<span class="image_frame image_frame_border"><a href="/oakland/Some_Mural/_files/first.jpg/_info/"><img src="/media/first_thumb.jpg"></a></span>
<span class="image_frame image_frame_border"><a href="/oakland/Some_Mural/_files/wide.jpg/_info/"><img src="/media/wide_thumb.jpg"></a></span>
<ul class="tags">
  <li class="tag"><a href="/oakland/tags/oam_uses_wide">oam_uses_wide.jpg</a></li>
  <li class="tag"><a href="/oakland/tags/artist">artist Jane Doe</a></li>
  <li class="tag"><a href="/oakland/tags/janedoe">Jane Doe</a></li>
</ul>
</body></html>`

func TestParsePage_FavoredImageAndArtist(t *testing.T) {
	p, err := ParsePage(strings.NewReader(pageFixture), testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.FavoredImage != "wide.jpg" {
		t.Errorf("expected favoured image wide.jpg, got %q", p.FavoredImage)
	}
	if p.ImageURL != "https://localwiki.org/media/wide_thumb.jpg" {
		t.Errorf("expected favoured image url, got %q", p.ImageURL)
	}
	if p.ImageInfoURL != "https://localwiki.org/oakland/Some_Mural/_files/wide.jpg/_info/" {
		t.Errorf("unexpected info url %q", p.ImageInfoURL)
	}
	if p.Artist != "Jane Doe" {
		t.Errorf("expected artist Jane Doe, got %q", p.Artist)
	}
	if p.ArtistLink != "https://localwiki.org/oakland/tags/janedoe" {
		t.Errorf("unexpected artist link %q", p.ArtistLink)
	}
	if p.NotVisible {
		t.Error("page should be visible")
	}
}

func TestParsePage_FirstImageAndReserve(t *testing.T) {
	const page = `<html><body>
<span class="image_frame"><a href="/oakland/X/_files/a.jpg/_info/"><img src="/media/a.jpg"></a></span>
<ul><li class="tag">not currently visible</li></ul>
</body></html>`

	p, err := ParsePage(strings.NewReader(page), testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.NotVisible {
		t.Error("expected page to be marked not visible")
	}
	if p.ImageURL != "https://localwiki.org/media/a.jpg" {
		t.Errorf("expected first image, got %q", p.ImageURL)
	}
	if p.Artist != "" || p.ArtistLink != "" {
		t.Errorf("expected no artist, got %q %q", p.Artist, p.ArtistLink)
	}
}

func TestParsePage_NoImage(t *testing.T) {
	p, err := ParsePage(strings.NewReader(`<html><body><p>stub</p></body></html>`), testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ImageURL != NoImageURL {
		t.Errorf("expected placeholder image, got %q", p.ImageURL)
	}
	if p.ImageInfoURL != testSite.IndexURL {
		t.Errorf("expected index page as info link, got %q", p.ImageInfoURL)
	}
}
