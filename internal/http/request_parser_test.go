package http

import (
	"net/url"
	"testing"
	"time"
)

func TestParseFilter(t *testing.T) {
	t.Run("empty query means no restriction", func(t *testing.T) {
		f, err := parseFilter(url.Values{})
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if f.Search != "" || f.CategoryID != "" || len(f.CategoryIDs) != 0 {
			t.Fatalf("unexpected restrictions: %+v", f)
		}
		if f.Posted != nil || f.Recurring != nil || f.DateRange != nil {
			t.Fatalf("unexpected predicates: %+v", f)
		}
	})

	t.Run("category id set", func(t *testing.T) {
		q := url.Values{"categoryIds": {" cat_a, ,cat_b ,"}, "categoryId": {"cat_c"}}
		f, err := parseFilter(q)
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if len(f.CategoryIDs) != 2 || f.CategoryIDs[0] != "cat_a" || f.CategoryIDs[1] != "cat_b" {
			t.Fatalf("CategoryIDs = %v", f.CategoryIDs)
		}
		// Both are carried; the engine gives the set precedence.
		if f.CategoryID != "cat_c" {
			t.Fatalf("CategoryID = %q", f.CategoryID)
		}
	})

	t.Run("posted and recurring", func(t *testing.T) {
		f, err := parseFilter(url.Values{"posted": {"true"}, "recurring": {"false"}})
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if f.Posted == nil || !*f.Posted {
			t.Fatal("Posted should be true")
		}
		if f.Recurring == nil || *f.Recurring {
			t.Fatal("Recurring should be false")
		}
	})

	t.Run("invalid bool", func(t *testing.T) {
		if _, err := parseFilter(url.Values{"posted": {"maybe"}}); err == nil {
			t.Fatal("expected error for posted=maybe")
		}
	})

	t.Run("closed date range", func(t *testing.T) {
		f, err := parseFilter(url.Values{"from": {"2024-06-01"}, "to": {"2024-06-30"}})
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if f.DateRange == nil {
			t.Fatal("DateRange should be set")
		}
		if !f.DateRange.Start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("Start = %v", f.DateRange.Start)
		}
		if !f.DateRange.End.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("End = %v", f.DateRange.End)
		}
	})

	t.Run("open ended range", func(t *testing.T) {
		f, err := parseFilter(url.Values{"from": {"2024-06-01"}})
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if f.DateRange == nil || f.DateRange.End.Year() != 9999 {
			t.Fatalf("DateRange = %+v", f.DateRange)
		}

		f, err = parseFilter(url.Values{"to": {"2024-06-30"}})
		if err != nil {
			t.Fatalf("parseFilter: %v", err)
		}
		if f.DateRange == nil || !f.DateRange.Start.IsZero() {
			t.Fatalf("DateRange = %+v", f.DateRange)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		if _, err := parseFilter(url.Values{"from": {"June 1st"}}); err == nil {
			t.Fatal("expected error for malformed date")
		}
	})
}

func TestParseDay(t *testing.T) {
	d, err := parseDay(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	if !d.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("parseDay = %v", d)
	}

	if _, err := parseDay("2024-13-01"); err == nil {
		t.Fatal("expected error for month 13")
	}
}
