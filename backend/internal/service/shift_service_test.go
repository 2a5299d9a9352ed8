package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
)

func setupShiftService() (*shiftService, *fixture) {
	f := newFixture()
	a := f.addShift("shift-a", org, "alice", 24*time.Hour)
	color := "#ff0000"
	a.Sector = &model.Sector{SectorID: "sec-1", Name: "ICU", Color: &color}
	notes := "bring badge"
	a.Notes = &notes
	f.addShift("shift-b", org, "alice", 10*24*time.Hour)
	f.addShift("shift-far", org, "alice", 60*24*time.Hour)
	f.addShift("shift-bob", org, "bob", 24*time.Hour)
	f.addShift("shift-other-org", "org-2", "alice", 24*time.Hour)
	return &shiftService{repo: f.repo, logger: zap.NewNop(), now: f.clock}, f
}

func TestShiftService_ListMine_DefaultWindow(t *testing.T) {
	svc, _ := setupShiftService()

	list, err := svc.ListMine(context.Background(), alice, &dto.MyShiftsRequest{})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("shifts = %d, want 2", len(list))
	}
	if list[0].ID != "shift-a" || list[1].ID != "shift-b" {
		t.Errorf("order = %s, %s", list[0].ID, list[1].ID)
	}
	if list[0].Sector == nil || list[0].Sector.Name != "ICU" {
		t.Errorf("sector = %+v", list[0].Sector)
	}
}

func TestShiftService_ListMine_ExplicitWindow(t *testing.T) {
	svc, _ := setupShiftService()

	list, err := svc.ListMine(context.Background(), alice, &dto.MyShiftsRequest{From: "2026-03-01", To: "2026-06-30"})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("shifts = %d, want 3", len(list))
	}
}

func TestShiftService_InvalidWindow(t *testing.T) {
	svc, _ := setupShiftService()

	cases := []dto.MyShiftsRequest{
		{From: "2026-03-10", To: "2026-03-01"},
		{From: "2026-01-01", To: "2027-06-01"},
		{From: "not-a-date"},
	}
	for _, req := range cases {
		r := req
		if _, err := svc.ListMine(context.Background(), alice, &r); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("%+v: error = %v, want ErrInvalidDateRange", req, err)
		}
	}
}

func TestShiftService_CalendarICS(t *testing.T) {
	svc, _ := setupShiftService()

	body, err := svc.CalendarICS(context.Background(), alice, &dto.MyShiftsRequest{})
	if err != nil {
		t.Fatalf("CalendarICS: %v", err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if uid := events[0].Id(); uid != "shift-shift-a@shiftcare" {
		t.Errorf("uid = %s", uid)
	}
	if p := events[0].GetProperty(ics.ComponentPropertySummary); p == nil || p.Value != "Shift - ICU" {
		t.Errorf("summary = %v", p)
	}
	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	if want := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if !strings.Contains(body, calendarProductID) {
		t.Error("product id missing")
	}
}
