package kbase

import (
	"encoding/json"
	"strings"
	"testing"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func testContent() Content {
	return Content{
		"hero":     raw(`{"title":"Acme Labs","subtitle":"We build things","description":"Software studio."}`),
		"projects": raw(`{"items":[{"title":"Alpha","id":"a1","description":"Flagship product","tech":["Go","SQLite"]},{"title":"Beta","description":"Side project"}]}`),
		"services": raw(`{"items":[{"name":"Consulting","description":"Architecture reviews"}]}`),
		"contact":  raw(`{"email":"hello@acme.example","socials":[{"label":"GitHub","url":"https://github.com/acme"}]}`),
	}
}

func TestBuildDeterministic(t *testing.T) {
	opts := Options{SiteName: "Acme Labs", SiteBaseURL: "https://acme.example"}
	c := testContent()

	a := Build(c, opts)
	b := Build(c, opts)
	if a != b {
		t.Error("two builds of identical input differ")
	}
	if a == "" {
		t.Fatal("empty output")
	}
}

func TestBuildSectionOrder(t *testing.T) {
	out := Build(testContent(), Options{SiteBaseURL: "https://acme.example"})

	identity := strings.Index(out, "## Identity")
	projects := strings.Index(out, "## Projects")
	services := strings.Index(out, "## Services")
	contact := strings.Index(out, "## Contact")
	pages := strings.Index(out, "## Pages")

	for name, idx := range map[string]int{
		"Identity": identity, "Projects": projects,
		"Services": services, "Contact": contact, "Pages": pages,
	} {
		if idx < 0 {
			t.Fatalf("section %s missing from output:\n%s", name, out)
		}
	}
	if !(identity < projects && projects < services && services < contact && contact < pages) {
		t.Errorf("section order wrong:\n%s", out)
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	out := Build(Content{
		"hero": raw(`{"title":"Acme"}`),
	}, Options{SiteBaseURL: "https://acme.example"})

	for _, forbidden := range []string{"## Projects", "## Services", "## Team", "N/A"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("output contains %q for empty section:\n%s", forbidden, out)
		}
	}
}

func TestProjectURLAuthority(t *testing.T) {
	out := Build(testContent(), Options{SiteBaseURL: "https://acme.example"})

	if !strings.Contains(out, "Alpha") {
		t.Error("project title missing")
	}
	if !strings.Contains(out, "https://acme.example/project/a1") {
		t.Errorf("canonical project URL missing:\n%s", out)
	}
	// Second project has no ID: positional index.
	if !strings.Contains(out, "https://acme.example/project/1") {
		t.Errorf("positional project URL missing:\n%s", out)
	}
	// No other URL pattern for project Alpha.
	if strings.Contains(out, "/projects/a1") || strings.Contains(out, "/p/a1") {
		t.Errorf("non-canonical project URL present:\n%s", out)
	}
}

func TestLiveStatsTrailer(t *testing.T) {
	c := testContent()
	plain := Build(c, Options{SiteBaseURL: "https://acme.example"})
	withStats := Build(c, Options{
		SiteBaseURL: "https://acme.example",
		LiveStats:   "7 client inquiries received to date.",
	})

	if !strings.HasPrefix(withStats, plain) {
		t.Error("live stats must be a pure trailer on the plain build")
	}
	if !strings.Contains(withStats, "7 client inquiries") {
		t.Error("live stats fragment missing")
	}
	if strings.Contains(plain, "Live Stats") {
		t.Error("plain build must not contain a live stats section")
	}
}

func TestCorruptSectionSkipped(t *testing.T) {
	c := testContent()
	c["services"] = raw(`{not valid json`)

	out := Build(c, Options{SiteBaseURL: "https://acme.example"})
	if strings.Contains(out, "## Services") {
		t.Error("undecodable section should be omitted")
	}
	if !strings.Contains(out, "## Projects") {
		t.Error("valid sections must survive a corrupt sibling")
	}
}
