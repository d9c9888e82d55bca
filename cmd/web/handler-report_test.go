package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func (ts *testServer) getDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	status, body := ts.getBody(t, path)
	if status != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", path, status)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse GET %s response: %v", path, err)
	}
	return doc
}

func Test_reportGET_noHistory(t *testing.T) {
	ts := newTestServer(t)

	doc := ts.getDoc(t, "/report")
	if doc.Find(".insufficient-data").Length() != 1 {
		t.Error("expected the insufficient data notice for a fresh user")
	}
	if doc.Find(".adjustment").Length() != 0 {
		t.Error("expected no adjustments for a fresh user")
	}
}

func Test_reportGET_withAdjustments(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	userID := ts.establishSession(t)
	_, benchID := seedWorkout(ctx, t, ts.db, userID)

	now := time.Now()
	insertRecord(ctx, t, ts.db, userID, benchID, 4, 2, 50, []int{10, 8}, now.AddDate(0, 0, -14))
	insertRecord(ctx, t, ts.db, userID, benchID, 4, 2, 50, []int{10, 9}, now.AddDate(0, 0, -7))
	insertRecord(ctx, t, ts.db, userID, benchID, 4, 3, 50, []int{10, 9, 8}, now.AddDate(0, 0, -1))

	doc := ts.getDoc(t, "/report")

	adjustments := doc.Find(".adjustment")
	if adjustments.Length() == 0 {
		t.Fatal("expected adjustments in the report")
	}

	mentionsBench := false
	adjustments.Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), "Bench Press") {
			mentionsBench = true
		}
	})
	if !mentionsBench {
		t.Error("no adjustment mentions the struggling exercise")
	}

	if doc.Find(".priority-heading").Length() == 0 {
		t.Error("expected priority group headings")
	}
	if !strings.Contains(doc.Find(".summary").Text(), "suggestions") {
		t.Error("summary section missing")
	}
}
