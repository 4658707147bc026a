package observability

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sitekb/dbopen"
)

func TestLogAndRecent(t *testing.T) {
	db := dbopen.OpenMemory(t)
	l, err := NewEventLogger(db)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	l.Log(ctx, Event{Type: "publish", EntityType: "cache", Success: true})
	l.Log(ctx, Event{Type: "lead_created", EntityType: "lead", EntityID: "lead_1", Success: true})

	all, err := l.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("recent: got %d events, want 2", len(all))
	}

	pubs, err := l.Recent(ctx, "publish", 10)
	if err != nil {
		t.Fatalf("recent publish: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type != "publish" {
		t.Errorf("publish filter: got %+v", pubs)
	}
}

func TestLogNeverPropagates(t *testing.T) {
	db := dbopen.OpenMemory(t)
	l, err := NewEventLogger(db)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// Sabotage the table; Log must not panic or error.
	if _, err := db.Exec(`DROP TABLE business_event_logs`); err != nil {
		t.Fatal(err)
	}
	l.Log(context.Background(), Event{Type: "publish"})
}
