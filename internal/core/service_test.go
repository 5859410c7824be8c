package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/memstore"
)

var agent = core.Identity{ID: "agent-1", Email: "agent@example.com", Name: "Agent One", Role: core.RoleUser}

// stepClock returns a clock that advances one second per call from start.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func newService(t *testing.T, opts ...core.Option) (*core.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	err := store.CreateUser(context.Background(), &auth.User{ID: agent.ID, Email: agent.Email, Name: agent.Name, Role: agent.Role})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	opts = append([]core.Option{core.WithClock(stepClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))}, opts...)
	return core.NewService(store, opts...), store
}

func input(first string, value *float64) core.LeadInput {
	return core.LeadInput{
		FirstName:       first,
		LastName:        "Tester",
		Email:           strings.ToLower(first) + "@example.com",
		PropertyType:    "single family",
		PropertyAddress: "1 Main St",
		PropertyCity:    "Austin",
		PropertyState:   "TX",
		PropertyZipCode: "73301",
		EstimatedValue:  value,
	}
}

func ptr(v float64) *float64 { return &v }

func mustCreate(t *testing.T, svc *core.Service, in core.LeadInput) *core.Lead {
	t.Helper()
	l, err := svc.CreateLead(context.Background(), agent, in)
	if err != nil {
		t.Fatalf("CreateLead(%s): %v", in.FirstName, err)
	}
	return l
}

func TestCreateLeadDefaultsAndHistory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	l := mustCreate(t, svc, input("Ann", nil))
	if l.Status != core.StatusNew || l.Priority != core.PriorityMedium {
		t.Errorf("defaults = %s/%s, want NEW/MEDIUM", l.Status, l.Priority)
	}
	if l.PropertyType != core.PropertySingleFamily {
		t.Errorf("PropertyType = %q, want normalized", l.PropertyType)
	}
	if l.CreatedByID != agent.ID {
		t.Errorf("CreatedByID = %q", l.CreatedByID)
	}

	detail, err := svc.GetLead(ctx, agent, l.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if len(detail.History) != 1 {
		t.Fatalf("history = %d entries, want 1", len(detail.History))
	}
	h := detail.History[0]
	if h.Action != core.ActionCreated || h.Field != "status" || h.NewValue != "NEW" || h.UserID != agent.ID {
		t.Errorf("created entry = %+v", h)
	}
}

func TestCreateLeadValidation(t *testing.T) {
	svc, _ := newService(t)

	in := input("Bad", ptr(-5))
	in.PropertyType = "castle"
	in.Email = ""
	_, err := svc.CreateLead(context.Background(), agent, in)

	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	got := map[string]bool{}
	for _, f := range ve.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"email", "propertyType", "estimatedValue"} {
		if !got[want] {
			t.Errorf("missing validation error for %s in %v", want, ve.Fields)
		}
	}
}

func TestOperationsRequireIdentity(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	var anon core.Identity

	checks := map[string]error{}
	_, checks["create"] = svc.CreateLead(ctx, anon, input("X", nil))
	_, checks["get"] = svc.GetLead(ctx, anon, "id")
	_, checks["list"] = svc.ListLeads(ctx, anon, core.ListFilters{}, core.Page{})
	_, checks["search"] = svc.Search(ctx, anon, core.SearchFilters{}, core.Page{})
	_, checks["import"] = svc.ImportCSV(ctx, anon, "a\nb")
	_, checks["export"] = svc.Export(ctx, anon, core.ListFilters{}, core.ExportCSV)
	_, checks["stats"] = svc.DashboardStats(ctx, anon)
	checks["delete"] = svc.DeleteLead(ctx, anon, "id")

	for name, err := range checks {
		if !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("%s: err = %v, want ErrUnauthenticated", name, err)
		}
	}
}

func TestSearchStatistics(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, input("A", ptr(100000)))
	b := input("B", nil)
	b.Status = "qualified"
	mustCreate(t, svc, b)
	c := input("C", ptr(300000))
	c.Priority = "high"
	mustCreate(t, svc, c)

	res, err := svc.Search(context.Background(), agent, core.SearchFilters{}, svc.Page(1, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	st := res.Statistics
	if st == nil {
		t.Fatal("statistics missing")
	}
	if st.Total != 3 || st.ValueCount != 2 {
		t.Errorf("total/valueCount = %d/%d, want 3/2", st.Total, st.ValueCount)
	}
	if *st.AverageValue != 200000 || *st.TotalValue != 400000 || *st.MinValue != 100000 || *st.MaxValue != 300000 {
		t.Errorf("aggregates = avg %v sum %v min %v max %v", *st.AverageValue, *st.TotalValue, *st.MinValue, *st.MaxValue)
	}
	if st.StatusBreakdown[core.StatusNew] != 2 || st.StatusBreakdown[core.StatusQualified] != 1 {
		t.Errorf("status breakdown = %v", st.StatusBreakdown)
	}
	if _, ok := st.StatusBreakdown[core.StatusClosed]; ok {
		t.Error("breakdown should only contain occurring values")
	}
	if st.PriorityBreakdown[core.PriorityHigh] != 1 || st.PriorityBreakdown[core.PriorityMedium] != 2 {
		t.Errorf("priority breakdown = %v", st.PriorityBreakdown)
	}
}

func TestSearchStatisticsWithoutValues(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, input("A", nil))

	res, err := svc.Search(context.Background(), agent, core.SearchFilters{}, core.Page{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	st := res.Statistics
	if st.AverageValue != nil || st.TotalValue != nil || st.MinValue != nil || st.MaxValue != nil {
		t.Errorf("value aggregates should be nil: %+v", st)
	}
}

func TestPaginationCompleteness(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		mustCreate(t, svc, input(fmt.Sprintf("Lead%02d", i), nil))
	}

	seen := map[string]bool{}
	wantSizes := []int{10, 10, 5}
	for page, want := range wantSizes {
		res, err := svc.ListLeads(ctx, agent, core.ListFilters{}, svc.Page(page+1, 10))
		if err != nil {
			t.Fatalf("ListLeads page %d: %v", page+1, err)
		}
		if len(res.Leads) != want {
			t.Errorf("page %d has %d leads, want %d", page+1, len(res.Leads), want)
		}
		if res.Pagination.Total != 25 || res.Pagination.TotalPages != 3 {
			t.Errorf("pagination = %+v", res.Pagination)
		}
		if res.Statistics != nil {
			t.Error("list results carry no statistics")
		}
		for _, l := range res.Leads {
			if seen[l.ID] {
				t.Errorf("lead %s returned twice", l.ID)
			}
			seen[l.ID] = true
		}
	}
	if len(seen) != 25 {
		t.Errorf("saw %d distinct leads, want 25", len(seen))
	}

	first, _ := svc.ListLeads(ctx, agent, core.ListFilters{}, svc.Page(1, 10))
	if first.Leads[0].FirstName != "Lead24" {
		t.Errorf("newest first: got %s", first.Leads[0].FirstName)
	}
}

func TestPageSizeIsCapped(t *testing.T) {
	svc, _ := newService(t, core.WithMaxPageSize(5))
	if got := svc.Page(0, 500); got.Size != 5 || got.Number != 1 {
		t.Errorf("Page = %+v", got)
	}
}

func TestSearchPastLastPage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mustCreate(t, svc, input(fmt.Sprintf("Lead%d", i), nil))
	}

	for _, number := range []int{2, 1844674407370955161, math.MaxInt} {
		res, err := svc.Search(ctx, agent, core.SearchFilters{}, svc.Page(number, 10))
		if err != nil {
			t.Fatalf("Search page %d: %v", number, err)
		}
		if len(res.Leads) != 0 {
			t.Errorf("page %d has %d leads, want none", number, len(res.Leads))
		}
		if res.Pagination.Total != 3 || res.Statistics.Total != 3 {
			t.Errorf("page %d: pagination = %+v", number, res.Pagination)
		}
	}
}

func TestPageOffsetSaturates(t *testing.T) {
	p := core.NewPage(math.MaxInt, 10, 100)
	if off := p.Offset(); off < 0 || off > math.MaxInt-10 {
		t.Errorf("NewPage offset = %d", off)
	}
	if off := (core.Page{Number: math.MaxInt, Size: 100}).Offset(); off != math.MaxInt {
		t.Errorf("raw page offset = %d, want MaxInt", off)
	}
	if off := (core.Page{Number: 3, Size: 10}).Offset(); off != 20 {
		t.Errorf("offset = %d, want 20", off)
	}
}

func TestCreatedDateToIncludesWholeDay(t *testing.T) {
	created := time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC)
	svc, _ := newService(t, core.WithClock(func() time.Time { return created }))
	mustCreate(t, svc, input("Late", nil))

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		filters core.SearchFilters
		want    int
	}{
		{"to same day", core.SearchFilters{CreatedDateTo: &day}, 1},
		{"from same day", core.SearchFilters{CreatedDateFrom: &day}, 1},
		{"from next day", core.SearchFilters{CreatedDateFrom: &next}, 0},
		{"range of one day", core.SearchFilters{CreatedDateFrom: &day, CreatedDateTo: &day}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Search(context.Background(), agent, tt.filters, core.Page{})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(res.Leads) != tt.want {
				t.Errorf("got %d leads, want %d", len(res.Leads), tt.want)
			}
		})
	}
}

func TestSearchFiltersAndIdempotence(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := input("Alpha", ptr(150000))
	a.LeadSource = "Zillow Premier"
	a.MotivationForSelling = "relocating for work"
	mustCreate(t, svc, a)
	b := input("Bravo", ptr(90000))
	b.PropertyCondition = "needs repair"
	mustCreate(t, svc, b)
	mustCreate(t, svc, input("Charlie", nil))

	tests := []struct {
		name    string
		filters core.SearchFilters
		want    []string
	}{
		{"text on motivation", core.SearchFilters{Search: "RELOCATING"}, []string{"Alpha"}},
		{"lead source substring", core.SearchFilters{LeadSource: "zillow"}, []string{"Alpha"}},
		{"condition", core.SearchFilters{PropertyCondition: core.ConditionNeedsRepair}, []string{"Bravo"}},
		{"min value excludes missing", core.SearchFilters{EstimatedValueMin: ptr(100000)}, []string{"Alpha"}},
		{"max value excludes missing", core.SearchFilters{EstimatedValueMax: ptr(100000)}, []string{"Bravo"}},
		{"no filters", core.SearchFilters{}, []string{"Charlie", "Bravo", "Alpha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := svc.Search(ctx, agent, tt.filters, core.Page{})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			second, _ := svc.Search(ctx, agent, tt.filters, core.Page{})

			var got []string
			for i, l := range first.Leads {
				got = append(got, l.FirstName)
				if second.Leads[i].ID != l.ID {
					t.Errorf("repeat search differs at %d", i)
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListSearchUsesNarrowFieldSet(t *testing.T) {
	svc, _ := newService(t)
	in := input("Dana", nil)
	in.MotivationForSelling = "divorce"
	mustCreate(t, svc, in)

	res, err := svc.ListLeads(context.Background(), agent, core.ListFilters{Search: "divorce"}, core.Page{})
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(res.Leads) != 0 {
		t.Errorf("list search matched motivation; it only covers name, email and address")
	}
}

func TestUpdateLeadRecordsFieldChanges(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, input("Eve", nil))

	status, phone, same := "contacted", "555-0199", "Eve"
	updated, err := svc.UpdateLead(ctx, agent, l.ID, core.LeadPatch{Status: &status, Phone: &phone, FirstName: &same})
	if err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}
	if updated.Status != core.StatusContacted || updated.UpdatedByID != agent.ID {
		t.Errorf("updated = %s by %q", updated.Status, updated.UpdatedByID)
	}

	detail, err := svc.GetLead(ctx, agent, l.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if len(detail.History) != 3 {
		t.Fatalf("history = %+v, want 3 entries", detail.History)
	}

	byField := map[string]core.LeadHistory{}
	for _, h := range detail.History[:2] {
		byField[h.Field] = h
	}
	if h := byField["status"]; h.Action != core.ActionStatusChanged || h.OldValue != "NEW" || h.NewValue != "CONTACTED" {
		t.Errorf("status entry = %+v", h)
	}
	if h := byField["phone"]; h.Action != core.ActionUpdated || h.OldValue != "" || h.NewValue != "555-0199" {
		t.Errorf("phone entry = %+v", h)
	}
	if detail.History[2].Action != core.ActionCreated {
		t.Errorf("oldest entry = %+v, want CREATED", detail.History[2])
	}
}

func TestUpdateLeadClearsOptionalNumbers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	in := input("Val", ptr(250000))
	in.CurrentMortgageBalance = ptr(90000)
	l := mustCreate(t, svc, in)

	var patch core.LeadPatch
	if err := json.Unmarshal([]byte(`{"estimatedValue": null, "phone": "555-0100"}`), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !patch.EstimatedValue.Set || patch.EstimatedValue.Value != nil || patch.CurrentMortgageBalance.Set {
		t.Fatalf("patch = %+v", patch)
	}

	updated, err := svc.UpdateLead(ctx, agent, l.ID, patch)
	if err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}
	if updated.EstimatedValue != nil {
		t.Errorf("estimatedValue = %v, want cleared", *updated.EstimatedValue)
	}
	if updated.CurrentMortgageBalance == nil || *updated.CurrentMortgageBalance != 90000 {
		t.Errorf("absent currentMortgageBalance changed: %v", updated.CurrentMortgageBalance)
	}

	detail, _ := svc.GetLead(ctx, agent, l.ID)
	var cleared bool
	for _, h := range detail.History {
		if h.Field == "estimatedValue" && h.OldValue == "250000" && h.NewValue == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("no history entry for the cleared value: %+v", detail.History)
	}

	updated, err = svc.UpdateLead(ctx, agent, l.ID, core.LeadPatch{EstimatedValue: core.SetFloat(300000)})
	if err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}
	if updated.EstimatedValue == nil || *updated.EstimatedValue != 300000 {
		t.Errorf("estimatedValue = %v, want 300000", updated.EstimatedValue)
	}
}

func TestUpdateLeadErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateLead(ctx, agent, "missing", core.LeadPatch{})
	if !errors.Is(err, core.ErrLeadNotFound) {
		t.Errorf("err = %v, want ErrLeadNotFound", err)
	}

	l := mustCreate(t, svc, input("Finn", nil))
	bad := "sideways"
	_, err = svc.UpdateLead(ctx, agent, l.ID, core.LeadPatch{Status: &bad})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want *ValidationError", err)
	}
}

func TestGetLeadLimitsHistory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, input("Gus", nil))

	for i := 0; i < 12; i++ {
		phone := fmt.Sprintf("555-%04d", i)
		if _, err := svc.UpdateLead(ctx, agent, l.ID, core.LeadPatch{Phone: &phone}); err != nil {
			t.Fatalf("UpdateLead: %v", err)
		}
	}
	detail, err := svc.GetLead(ctx, agent, l.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if len(detail.History) != core.HistoryDetailLimit {
		t.Errorf("history = %d entries, want %d", len(detail.History), core.HistoryDetailLimit)
	}
	if detail.History[0].NewValue != "555-0011" {
		t.Errorf("newest entry = %+v", detail.History[0])
	}
}

func TestAddNote(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	in := input("Hal", nil)
	in.AdditionalNotes = "first call"
	l := mustCreate(t, svc, in)

	updated, err := svc.AddNote(ctx, agent, l.ID, "  wants offer by Friday ")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if updated.AdditionalNotes != "first call\nwants offer by Friday" {
		t.Errorf("notes = %q", updated.AdditionalNotes)
	}

	detail, _ := svc.GetLead(ctx, agent, l.ID)
	if h := detail.History[0]; h.Action != core.ActionNoteAdded || h.NewValue != "wants offer by Friday" {
		t.Errorf("note entry = %+v", h)
	}

	var ve *core.ValidationError
	if _, err := svc.AddNote(ctx, agent, l.ID, "   "); !errors.As(err, &ve) {
		t.Errorf("blank note err = %v", err)
	}
}

func TestDeleteLeadKeepsHistoryInFeed(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, input("Ivy", nil))

	if err := svc.DeleteLead(ctx, agent, l.ID); err != nil {
		t.Fatalf("DeleteLead: %v", err)
	}
	if _, err := svc.GetLead(ctx, agent, l.ID); !errors.Is(err, core.ErrLeadNotFound) {
		t.Errorf("GetLead after delete: %v", err)
	}
	if err := svc.DeleteLead(ctx, agent, l.ID); !errors.Is(err, core.ErrLeadNotFound) {
		t.Errorf("second delete: %v", err)
	}

	feed, err := svc.RecentActivity(ctx, agent, 0)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(feed) != 1 || feed[0].Message != "New lead: (deleted lead)" {
		t.Errorf("feed = %+v", feed)
	}
}

func TestRecentActivityMessages(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, input("Jo", nil))
	status := "qualified"
	if _, err := svc.UpdateLead(ctx, agent, l.ID, core.LeadPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}
	if _, err := svc.AddNote(ctx, agent, l.ID, "called"); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	feed, err := svc.RecentActivity(ctx, agent, 5)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	want := []string{
		"Note added to Jo Tester",
		"Status updated: Jo Tester - Changed from NEW to QUALIFIED",
		"New lead: Jo Tester - 1 Main St, Austin, TX",
	}
	if len(feed) != len(want) {
		t.Fatalf("feed = %+v", feed)
	}
	for i, w := range want {
		if feed[i].Message != w {
			t.Errorf("feed[%d] = %q, want %q", i, feed[i].Message, w)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	svc, _ := newService(t)
	for i, status := range []string{"", "new", "qualified", "closed", "lost"} {
		in := input(fmt.Sprintf("S%d", i), nil)
		in.Status = status
		mustCreate(t, svc, in)
	}
	st, err := svc.DashboardStats(context.Background(), agent)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	want := core.DashboardStats{TotalLeads: 5, NewLeads: 2, QualifiedLeads: 1, ClosedLeads: 1}
	if *st != want {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}
}

const importHeader = "First Name,Last Name,Email,Property Type,Property Address,Property City,Property State,Property Zip,Status"

func TestImportCSVPartialFailure(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	text := strings.Join([]string{
		importHeader,
		"Ann,Lee,ann@x.com,condo,1 Main,Austin,TX,73301,",
		"Bob,Ray,bob@x.com,castle,2 Main,Austin,TX,73301,",
		"short,row",
		"Cy,Fox,cy@x.com,land,3 Main,Austin,TX,73301,under contract",
	}, "\n")

	sum, err := svc.ImportCSV(ctx, agent, text)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if sum.Imported != 2 || sum.Failed != 1 {
		t.Errorf("imported/failed = %d/%d, want 2/1", sum.Imported, sum.Failed)
	}
	if len(sum.Errors) != 1 || sum.Errors[0] != "Failed to import Bob Ray: bob@x.com" {
		t.Errorf("errors = %v", sum.Errors)
	}
	if len(sum.Warnings) != 1 || sum.Warnings[0].Row != 4 {
		t.Errorf("warnings = %+v", sum.Warnings)
	}

	res, _ := svc.Search(ctx, agent, core.SearchFilters{Status: core.StatusUnderContract}, core.Page{})
	if len(res.Leads) != 1 || res.Leads[0].PropertyType != core.PropertyLand {
		t.Errorf("imported lead not normalized: %+v", res.Leads)
	}

	detail, _ := svc.GetLead(ctx, agent, res.Leads[0].ID)
	if len(detail.History) != 1 || detail.History[0].Action != core.ActionCreated || detail.History[0].NewValue != "UNDER_CONTRACT" {
		t.Errorf("import history = %+v", detail.History)
	}
}

// changeRecorder counts LeadChanged calls by action.
type changeRecorder struct {
	mu      sync.Mutex
	changes map[core.HistoryAction]int
}

func (r *changeRecorder) ImportFinished(int, int, int, time.Duration) {}
func (r *changeRecorder) SearchFinished(string, int64, time.Duration) {}
func (r *changeRecorder) ExportFinished(string, int) {}

func (r *changeRecorder) LeadChanged(action core.HistoryAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.changes == nil {
		r.changes = make(map[core.HistoryAction]int)
	}
	r.changes[action]++
}

func TestImportCSVReportsCreations(t *testing.T) {
	rec := &changeRecorder{}
	svc, _ := newService(t, core.WithObserver(rec))

	text := strings.Join([]string{
		importHeader,
		"Ann,Lee,ann@x.com,condo,1 Main,Austin,TX,73301,",
		"Bob,Ray,bob@x.com,castle,2 Main,Austin,TX,73301,",
		"Cy,Fox,cy@x.com,land,3 Main,Austin,TX,73301,",
	}, "\n")

	if _, err := svc.ImportCSV(context.Background(), agent, text); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if got := rec.changes[core.ActionCreated]; got != 2 {
		t.Errorf("LeadChanged(CREATED) called %d times, want 2", got)
	}
}

func TestImportCSVAborts(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	var fe *core.FormatError
	if _, err := svc.ImportCSV(ctx, agent, importHeader); !errors.As(err, &fe) {
		t.Errorf("header only: err = %v, want *FormatError", err)
	}
	if _, err := svc.ImportCSV(ctx, agent, importHeader+"\nonly,two"); !errors.Is(err, core.ErrNoValidLeads) {
		t.Errorf("no valid rows: err = %v, want ErrNoValidLeads", err)
	}
	if n, _ := store.CountLeads(ctx, core.Predicate{}); n != 0 {
		t.Errorf("aborted imports wrote %d leads", n)
	}
}

func TestImportCSVBusy(t *testing.T) {
	limiter := core.NewImportLimiter(1, 20*time.Millisecond)
	svc, _ := newService(t, core.WithImportLimiter(limiter))

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()

	_, err := svc.ImportCSV(context.Background(), agent, importHeader+"\nAnn,Lee,ann@x.com,condo,1 Main,Austin,TX,73301,")
	if !errors.Is(err, core.ErrTooManyImports) {
		t.Errorf("err = %v, want ErrTooManyImports", err)
	}
}

func TestExport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	mustCreate(t, svc, input("Kim", nil))
	hot := input("Lou", nil)
	hot.Priority = "urgent"
	mustCreate(t, svc, hot)

	file, err := svc.Export(ctx, agent, core.ListFilters{Priority: core.PriorityUrgent}, core.ExportCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if file.Rows != 1 || file.ContentType != "text/csv" {
		t.Errorf("file = %d rows, %s", file.Rows, file.ContentType)
	}
	if !strings.HasPrefix(file.Filename, "leads-export-2024-01-01") || !strings.HasSuffix(file.Filename, ".csv") {
		t.Errorf("Filename = %q", file.Filename)
	}
	lines := strings.Split(string(file.Data), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "Lou,Tester,") || !strings.HasSuffix(lines[1], ",Agent One") {
		t.Errorf("csv = %q", file.Data)
	}

	empty, err := svc.Export(ctx, agent, core.ListFilters{Search: "nobody"}, core.ExportCSV)
	if err != nil || len(empty.Data) != 0 {
		t.Errorf("empty export = %q, %v", empty.Data, err)
	}

	xlsx, err := svc.Export(ctx, agent, core.ListFilters{}, core.ExportXLSX)
	if err != nil {
		t.Fatalf("Export xlsx: %v", err)
	}
	if !strings.HasSuffix(xlsx.Filename, ".xlsx") || len(xlsx.Data) == 0 || xlsx.Rows != 2 {
		t.Errorf("xlsx = %s, %d bytes, %d rows", xlsx.Filename, len(xlsx.Data), xlsx.Rows)
	}
}

func TestParseExportFormat(t *testing.T) {
	for in, want := range map[string]core.ExportFormat{"": core.ExportCSV, "CSV": core.ExportCSV, "xlsx": core.ExportXLSX} {
		got, err := core.ParseExportFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseExportFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := core.ParseExportFormat("pdf"); err == nil {
		t.Error("pdf should be rejected")
	}
}
