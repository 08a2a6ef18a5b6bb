package localwiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newWiki(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oakland/Murals", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `x ["SRID=4326;GEOMETRYCOLLECTION (POINT (-122.27 37.80))", "<a href=\"/oakland/Good\">Good</a>"], `+
			`["SRID=4326;GEOMETRYCOLLECTION (POINT (-122.26 37.81))", "<a href=\"/oakland/Gone\">Gone</a>"]`)
	})
	mux.HandleFunc("/oakland/Good", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "muralmap-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, `<html><body><ul><li class="tag">not currently visible</li></ul></body></html>`)
	})
	mux.HandleFunc("/oakland/Gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Scrape(t *testing.T) {
	srv := newWiki(t)
	c := NewClient(Options{
		Site: Site{
			IndexURL: srv.URL + "/oakland/Murals",
			BaseURL:  srv.URL + "/oakland/",
			SiteURL:  srv.URL,
		},
		UserAgent:     "muralmap-test",
		CreditHelpURL: "https://example.org/credit",
	})

	murals, err := c.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(murals) != 2 {
		t.Fatalf("expected 2 murals, got %d", len(murals))
	}

	good := murals[0]
	if good.Name != "Good" || !good.Reserved {
		t.Errorf("expected reserved mural Good, got %+v", good)
	}
	if !strings.Contains(good.Popup, "give credit") {
		t.Errorf("expected rendered popup, got %q", good.Popup)
	}

	gone := murals[1]
	if gone.Popup != NotCollected {
		t.Errorf("failed page should not be collected, got %q", gone.Popup)
	}
	if gone.Location.Lat != 37.81 || gone.Location.Lon != -122.26 {
		t.Errorf("failed page should keep its index location, got %+v", gone.Location)
	}
}

func TestClient_Scrape_IndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(Options{Site: Site{IndexURL: srv.URL + "/oakland/Murals"}})
	if _, err := c.Scrape(context.Background()); err == nil {
		t.Fatal("expected error when the index is unavailable")
	}
}

func TestClient_Scrape_MaxPages(t *testing.T) {
	srv := newWiki(t)
	c := NewClient(Options{
		Site:      Site{IndexURL: srv.URL + "/oakland/Murals", BaseURL: srv.URL + "/oakland/", SiteURL: srv.URL},
		UserAgent: "muralmap-test",
		MaxPages:  1,
	})

	murals, err := c.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(murals) != 1 {
		t.Errorf("expected page limit to apply, got %d murals", len(murals))
	}
}
