package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

func TestCreateAndGetLink(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Engineering")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	link := newLink(owner, "Team Wiki")
	link.ShortCode = "wiki"
	link.Metadata = map[string]any{"pinned": true}
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	got, err := s.GetLink(adminIdent(), link.ID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.Title != "Team Wiki" || got.ShortCode != "wiki" {
		t.Errorf("got title=%q shortCode=%q", got.Title, got.ShortCode)
	}
	if got.ClickCount != 0 || got.ViewCount != 0 || got.LastAccessedAt != nil {
		t.Errorf("fresh link has nonzero counters: %+v", got)
	}
	if got.Metadata["pinned"] != true {
		t.Errorf("metadata not round-tripped: %v", got.Metadata)
	}
	if got.Department == nil || got.Department.Name != "Engineering" {
		t.Errorf("department relation not loaded: %+v", got.Department)
	}
	if got.Owner == nil || got.Owner.ID != owner.ID {
		t.Errorf("owner relation not loaded")
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("tags should be empty non-nil, got %v", got.Tags)
	}
}

func TestGetLinkByShortCode(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	link := newLink(owner, "Dash")
	link.ShortCode = "dash"
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	got, err := s.GetLinkByShortCode(adminIdent(), "dash")
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if got.ID != link.ID {
		t.Errorf("got id %q, want %q", got.ID, link.ID)
	}

	if _, err := s.GetLinkByShortCode(adminIdent(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown code: err = %v, want ErrNotFound", err)
	}
}

func TestShortCodeUnique(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	a := newLink(owner, "A")
	a.ShortCode = "dup"
	if err := s.CreateLink(a, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	b := newLink(owner, "B")
	b.ShortCode = "dup"
	if err := s.CreateLink(b, nil); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate short code: err = %v, want ErrAlreadyExists", err)
	}
}

func TestVisibilityScope(t *testing.T) {
	s := testStore(t)
	deptA := seedDept(t, s, "A")
	deptB := seedDept(t, s, "B")
	owner := seedProfile(t, s, deptA.ID, models.RoleUser)
	sameDept := seedProfile(t, s, deptA.ID, models.RoleUser)
	otherDept := seedProfile(t, s, deptB.ID, models.RoleUser)

	private := newLink(owner, "Private")
	private.Visibility = models.VisibilityPrivate
	public := newLink(owner, "Public")
	public.Visibility = models.VisibilityPublic
	deptScoped := newLink(owner, "Dept")
	for _, l := range []*models.Link{private, public, deptScoped} {
		if err := s.CreateLink(l, nil); err != nil {
			t.Fatalf("CreateLink: %v", err)
		}
	}

	cases := []struct {
		name  string
		ident models.Identity
		link  *models.Link
		see   bool
	}{
		{"owner sees own private", identFor(owner), private, true},
		{"peer cannot see private", identFor(sameDept), private, false},
		{"peer sees department link", identFor(sameDept), deptScoped, true},
		{"outsider cannot see department link", identFor(otherDept), deptScoped, false},
		{"outsider sees public", identFor(otherDept), public, true},
		{"admin sees private", adminIdent(), private, true},
	}
	for _, tc := range cases {
		_, err := s.GetLink(tc.ident, tc.link.ID)
		if tc.see && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.see && !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", tc.name, err)
		}
	}
}

func TestSearchFilters(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	now := time.Now().UTC()
	cat := &models.Category{ID: "cat-1", Name: "Tools", Slug: "tools", DepartmentID: dept.ID,
		Visibility: models.VisibilityDepartment, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateCategory(cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	tag := &models.Tag{ID: "tag-1", Name: "ci", Slug: "ci", CreatedAt: now}
	if err := s.CreateTag(tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	build := newLink(owner, "Build Dashboard")
	build.CategoryID = cat.ID
	if err := s.CreateLink(build, []string{tag.ID}); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	dead := newLink(owner, "Old Runbook")
	dead.Status = models.StatusDead
	if err := s.CreateLink(dead, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	base := models.LinkFilter{}
	base.Normalize()

	// Text query matches title.
	f := base
	f.Query = "Dashboard"
	links, total, err := s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 1 || len(links) != 1 || links[0].ID != build.ID {
		t.Errorf("query filter: total=%d links=%d", total, len(links))
	}

	// Status filter.
	f = base
	f.Status = models.StatusDead
	_, total, err = s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 1 {
		t.Errorf("status filter: total = %d, want 1", total)
	}

	// Category filter.
	f = base
	f.CategoryID = cat.ID
	links, _, err = s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if len(links) != 1 || links[0].ID != build.ID {
		t.Errorf("category filter returned %d links", len(links))
	}

	// Tag filter (OR semantics over one id).
	f = base
	f.TagIDs = []string{tag.ID}
	links, _, err = s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if len(links) != 1 || links[0].ID != build.ID {
		t.Errorf("tag filter returned %d links", len(links))
	}
	if len(links) == 1 && (len(links[0].Tags) != 1 || links[0].Tags[0].Slug != "ci") {
		t.Errorf("tags not loaded on search results: %v", links[0].Tags)
	}

	// No matches: empty page, zero total, no error.
	f = base
	f.Query = "definitely-absent-xyz"
	links, total, err = s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 0 || len(links) != 0 {
		t.Errorf("no-match search: total=%d links=%d", total, len(links))
	}
}

func TestSearchTagsOrSemantics(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	now := time.Now().UTC()
	tagA := &models.Tag{ID: "t-a", Name: "alpha", Slug: "alpha", CreatedAt: now}
	tagB := &models.Tag{ID: "t-b", Name: "beta", Slug: "beta", CreatedAt: now}
	for _, tag := range []*models.Tag{tagA, tagB} {
		if err := s.CreateTag(tag); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	onlyA := newLink(owner, "Only A")
	both := newLink(owner, "Both")
	neither := newLink(owner, "Neither")
	if err := s.CreateLink(onlyA, []string{tagA.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateLink(both, []string{tagA.ID, tagB.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateLink(neither, nil); err != nil {
		t.Fatal(err)
	}

	f := models.LinkFilter{TagIDs: []string{tagA.ID, tagB.ID}}
	f.Normalize()
	links, total, err := s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 2 || len(links) != 2 {
		t.Fatalf("OR filter: total=%d links=%d, want 2", total, len(links))
	}
	for _, l := range links {
		if l.ID == neither.ID {
			t.Errorf("untagged link matched tag filter")
		}
	}
}

func TestSearchPagination(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	titles := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for _, title := range titles {
		if err := s.CreateLink(newLink(owner, title), nil); err != nil {
			t.Fatalf("CreateLink: %v", err)
		}
	}

	f := models.LinkFilter{SortBy: models.SortByTitle, SortOrder: "asc", Limit: 2}
	f.Normalize()

	var seen []string
	for offset := 0; offset < len(titles); offset += 2 {
		f.Offset = offset
		links, total, err := s.SearchLinks(adminIdent(), f)
		if err != nil {
			t.Fatalf("SearchLinks offset %d: %v", offset, err)
		}
		if total != len(titles) {
			t.Errorf("offset %d: total = %d, want %d", offset, total, len(titles))
		}
		for _, l := range links {
			seen = append(seen, l.Title)
		}
	}
	if len(seen) != len(titles) {
		t.Fatalf("pages covered %d links, want %d", len(seen), len(titles))
	}
	for i, title := range titles {
		if seen[i] != title {
			t.Errorf("position %d: got %q, want %q", i, seen[i], title)
		}
	}
}

func TestRecordClickAndView(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	link := newLink(owner, "Clicky")
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	at := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := s.RecordClick(link.ID, at); err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}
	if err := s.RecordView(link.ID); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	got, err := s.GetLink(adminIdent(), link.ID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.ClickCount != 3 {
		t.Errorf("click_count = %d, want 3", got.ClickCount)
	}
	if got.ViewCount != 1 {
		t.Errorf("view_count = %d, want 1", got.ViewCount)
	}
	if got.LastAccessedAt == nil {
		t.Errorf("last_accessed_at not set")
	}

	if err := s.RecordClick("missing", at); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("RecordClick missing: err = %v, want ErrNotFound", err)
	}
	if err := s.RecordView("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("RecordView missing: err = %v, want ErrNotFound", err)
	}
}

func TestRecordClickConcurrent(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	link := newLink(owner, "Hot")
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	const workers = 10
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RecordClick(link.ID, time.Now().UTC())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}

	got, err := s.GetLink(adminIdent(), link.ID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.ClickCount != workers {
		t.Errorf("click_count = %d after %d concurrent clicks, want %d", got.ClickCount, workers, workers)
	}
}

func TestSearchWhitespaceQuery(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	for _, title := range []string{"Team Wiki", "Solo"} {
		if err := s.CreateLink(newLink(owner, title), nil); err != nil {
			t.Fatalf("CreateLink: %v", err)
		}
	}

	// A query of bare whitespace has no searchable terms; it must not
	// error, and degrades to substring matching.
	f := models.LinkFilter{Query: " "}
	f.Normalize()
	links, total, err := s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 1 || len(links) != 1 || links[0].Title != "Team Wiki" {
		t.Errorf("whitespace query: total=%d links=%d", total, len(links))
	}

	f = models.LinkFilter{Query: "\t\n"}
	f.Normalize()
	_, total, err = s.SearchLinks(adminIdent(), f)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if total != 0 {
		t.Errorf("tab query: total = %d, want 0", total)
	}
}

func TestUpdateLinkTagReplacement(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	now := time.Now().UTC()
	tagA := &models.Tag{ID: "t-a", Name: "a", Slug: "a", CreatedAt: now}
	tagB := &models.Tag{ID: "t-b", Name: "b", Slug: "b", CreatedAt: now}
	for _, tag := range []*models.Tag{tagA, tagB} {
		if err := s.CreateTag(tag); err != nil {
			t.Fatal(err)
		}
	}

	link := newLink(owner, "Tagged")
	if err := s.CreateLink(link, []string{tagA.ID}); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	// nil tag set leaves associations alone.
	link.Title = "Tagged v2"
	if err := s.UpdateLink(link, nil); err != nil {
		t.Fatalf("UpdateLink: %v", err)
	}
	tags, _ := s.TagsForLink(link.ID)
	if len(tags) != 1 || tags[0].ID != tagA.ID {
		t.Fatalf("nil patch changed tags: %v", tags)
	}

	// Non-nil set replaces wholesale.
	newSet := []string{tagB.ID}
	if err := s.UpdateLink(link, &newSet); err != nil {
		t.Fatalf("UpdateLink: %v", err)
	}
	tags, _ = s.TagsForLink(link.ID)
	if len(tags) != 1 || tags[0].ID != tagB.ID {
		t.Fatalf("replacement set = %v, want [b]", tags)
	}

	// Empty set clears.
	empty := []string{}
	if err := s.UpdateLink(link, &empty); err != nil {
		t.Fatalf("UpdateLink: %v", err)
	}
	tags, _ = s.TagsForLink(link.ID)
	if len(tags) != 0 {
		t.Fatalf("empty set left tags: %v", tags)
	}

	// usage_count followed the association churn back to zero.
	gotA, _ := s.GetTag(tagA.ID)
	gotB, _ := s.GetTag(tagB.ID)
	if gotA.UsageCount != 0 || gotB.UsageCount != 0 {
		t.Errorf("usage counts = %d/%d, want 0/0", gotA.UsageCount, gotB.UsageCount)
	}
}

func TestUpdateLinkUnknownID(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	ghost := newLink(owner, "Ghost")
	if err := s.UpdateLink(ghost, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateLink unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteLinkCascades(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	tag := &models.Tag{ID: "t-x", Name: "x", Slug: "x", CreatedAt: time.Now().UTC()}
	if err := s.CreateTag(tag); err != nil {
		t.Fatal(err)
	}
	link := newLink(owner, "Doomed")
	if err := s.CreateLink(link, []string{tag.ID}); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	if err := s.DeleteLink(link.ID); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if _, err := s.GetLink(adminIdent(), link.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted link still readable: %v", err)
	}
	var n int
	if err := s.conn.QueryRow(`SELECT count(*) FROM link_tags WHERE link_id = ?`, link.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("associations survived delete: %d", n)
	}
	got, _ := s.GetTag(tag.ID)
	if got.UsageCount != 0 {
		t.Errorf("usage_count = %d after cascade, want 0", got.UsageCount)
	}

	if err := s.DeleteLink(link.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestCreateLinkDropsUnknownTagIDs(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)

	link := newLink(owner, "Loose")
	if err := s.CreateLink(link, []string{"no-such-tag"}); err != nil {
		t.Fatalf("CreateLink with unknown tag: %v", err)
	}
	tags, err := s.TagsForLink(link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("unknown tag id produced association: %v", tags)
	}
}
