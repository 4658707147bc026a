// Package kbase builds the flat authoritative knowledge-base text served to
// the conversational assistant.
//
// Build is deterministic: the same assembled content always produces
// byte-identical output. This is what makes the gist cache and the builder
// tests possible. Section order is fixed; sections with no data are omitted
// entirely rather than rendered as placeholders.
package kbase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Content is assembled per-language content: section key → stored JSON.
type Content map[string]json.RawMessage

// Options controls rendering.
type Options struct {
	SiteName    string
	SiteBaseURL string

	// LiveStats is an optional trailing fragment (e.g. lead count) appended
	// at build time only. It is never part of cached gist provenance.
	LiveStats string
}

type hero struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

type about struct {
	Description string `json:"description"`
	Mission     string `json:"mission"`
	Vision      string `json:"vision"`
}

type project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
}

type projects struct {
	Items []project `json:"items"`
}

type service struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type services struct {
	Items []service `json:"items"`
}

type techstack struct {
	Items []string `json:"items"`
}

type whyPoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type whyus struct {
	Items []whyPoint `json:"items"`
}

type member struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type team struct {
	Members []member `json:"members"`
}

type social struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type contact struct {
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
	Socials []social `json:"socials"`
}

type link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type links struct {
	Items []link `json:"items"`
}

// ProjectURL returns the canonical detail URL for a project. Projects without
// an explicit ID fall back to their positional index in the stored list.
// This is the single authority for project links: the assistant is told to
// never invent URLs, so every link it may emit must originate here.
func ProjectURL(baseURL, id string, index int) string {
	ref := id
	if ref == "" {
		ref = fmt.Sprintf("%d", index)
	}
	return strings.TrimRight(baseURL, "/") + "/project/" + ref
}

// Build serializes assembled content into the knowledge-base text.
func Build(content Content, opts Options) string {
	var b strings.Builder
	base := strings.TrimRight(opts.SiteBaseURL, "/")

	if opts.SiteName != "" {
		fmt.Fprintf(&b, "# %s\n", opts.SiteName)
	}

	writeIdentity(&b, content)
	writeProjects(&b, content, base)
	writeServices(&b, content)
	writeTechStack(&b, content)
	writeWhyUs(&b, content)
	writeTeam(&b, content)
	writeContact(&b, content)
	writePageLinks(&b, base)
	writeExtraLinks(&b, content)

	if opts.LiveStats != "" {
		fmt.Fprintf(&b, "\n## Live Stats\n%s\n", opts.LiveStats)
	}

	return b.String()
}

func decode[T any](content Content, key string) (T, bool) {
	var v T
	raw, ok := content[key]
	if !ok || len(raw) == 0 {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

func writeIdentity(b *strings.Builder, content Content) {
	h, hasHero := decode[hero](content, "hero")
	a, hasAbout := decode[about](content, "about")
	if !hasHero && !hasAbout {
		return
	}

	b.WriteString("\n## Identity\n")
	if hasHero {
		if h.Title != "" {
			line := h.Title
			if h.Subtitle != "" {
				line += " - " + h.Subtitle
			}
			b.WriteString(line + "\n")
		}
		if h.Description != "" {
			b.WriteString(h.Description + "\n")
		}
	}
	if hasAbout {
		if a.Description != "" {
			b.WriteString(a.Description + "\n")
		}
		if a.Mission != "" {
			b.WriteString("Mission: " + a.Mission + "\n")
		}
		if a.Vision != "" {
			b.WriteString("Vision: " + a.Vision + "\n")
		}
	}
}

func writeProjects(b *strings.Builder, content Content, base string) {
	p, ok := decode[projects](content, "projects")
	if !ok || len(p.Items) == 0 {
		return
	}

	b.WriteString("\n## Projects\n")
	for i, item := range p.Items {
		line := "- " + item.Title
		if item.Description != "" {
			line += ": " + item.Description
		}
		if len(item.Tech) > 0 {
			line += " (Tech: " + strings.Join(item.Tech, ", ") + ")"
		}
		line += " | Details: " + ProjectURL(base, item.ID, i)
		b.WriteString(line + "\n")
	}
}

func writeServices(b *strings.Builder, content Content) {
	s, ok := decode[services](content, "services")
	if !ok || len(s.Items) == 0 {
		return
	}

	b.WriteString("\n## Services\n")
	for _, item := range s.Items {
		name := item.Name
		if name == "" {
			name = item.Title
		}
		line := "- " + name
		if item.Description != "" {
			line += ": " + item.Description
		}
		b.WriteString(line + "\n")
	}
}

func writeTechStack(b *strings.Builder, content Content) {
	ts, ok := decode[techstack](content, "techstack")
	if !ok || len(ts.Items) == 0 {
		return
	}

	b.WriteString("\n## Tech Stack\n")
	b.WriteString(strings.Join(ts.Items, ", ") + "\n")
}

func writeWhyUs(b *strings.Builder, content Content) {
	w, ok := decode[whyus](content, "whyus")
	if !ok || len(w.Items) == 0 {
		return
	}

	b.WriteString("\n## Why Us\n")
	for _, p := range w.Items {
		line := "- " + p.Title
		if p.Description != "" {
			line += ": " + p.Description
		}
		b.WriteString(line + "\n")
	}
}

func writeTeam(b *strings.Builder, content Content) {
	tm, ok := decode[team](content, "team")
	if !ok || len(tm.Members) == 0 {
		return
	}

	b.WriteString("\n## Team\n")
	for _, m := range tm.Members {
		line := "- " + m.Name
		if m.Role != "" {
			line += " (" + m.Role + ")"
		}
		b.WriteString(line + "\n")
	}
}

func writeContact(b *strings.Builder, content Content) {
	c, ok := decode[contact](content, "contact")
	if !ok {
		return
	}
	if c.Email == "" && c.Phone == "" && c.Address == "" && len(c.Socials) == 0 {
		return
	}

	b.WriteString("\n## Contact\n")
	if c.Email != "" {
		b.WriteString("Email: " + c.Email + "\n")
	}
	if c.Phone != "" {
		b.WriteString("Phone: " + c.Phone + "\n")
	}
	if c.Address != "" {
		b.WriteString("Address: " + c.Address + "\n")
	}
	for _, s := range c.Socials {
		b.WriteString(s.Label + ": " + s.URL + "\n")
	}
}

// writePageLinks emits the canonical site page URLs. The assistant must only
// ever hand out links that appear in this text.
func writePageLinks(b *strings.Builder, base string) {
	if base == "" {
		return
	}

	b.WriteString("\n## Pages\n")
	pages := []struct{ label, path string }{
		{"Home", "/"},
		{"About", "/about"},
		{"Projects", "/projects"},
		{"Services", "/services"},
		{"Contact", "/contact"},
	}
	for _, p := range pages {
		b.WriteString(p.label + ": " + base + p.path + "\n")
	}
}

func writeExtraLinks(b *strings.Builder, content Content) {
	l, ok := decode[links](content, "links")
	if !ok || len(l.Items) == 0 {
		return
	}

	b.WriteString("\n## Links\n")
	for _, item := range l.Items {
		b.WriteString(item.Label + ": " + item.URL + "\n")
	}
}
