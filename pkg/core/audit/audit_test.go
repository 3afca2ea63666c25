package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
)

func TestRowsOnePerChange(t *testing.T) {
	actor := &model.User{BaseModel: model.BaseModel{ID: 7}}
	entry := &Entry{Actor: actor, Action: UpdateChemical, Table: "chemical_inventory", RecordID: 3}
	changes := []Change{
		{Field: "quantity", Old: "5", New: "2"},
		{Field: "location", Old: "A", New: "A"},
		{Field: "notes", Old: "", New: "checked"},
	}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := Rows(entry, changes, now)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if *rows[0].FieldModified != "quantity" || *rows[0].OldValue != "5" || *rows[0].NewValue != "2" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if *rows[1].FieldModified != "notes" {
		t.Fatalf("unexpected second row field %s", *rows[1].FieldModified)
	}
	for _, r := range rows {
		if *r.UserID != 7 || *r.TableModified != "chemical_inventory" || *r.RecordID != 3 || !r.Timestamp.Equal(now) {
			t.Fatalf("row lost entry context: %+v", r)
		}
	}
}

func TestRowsSummaryRow(t *testing.T) {
	entry := &Entry{Action: DeleteAlert, Description: "Deleted alert 4"}
	rows := Rows(entry, nil, time.Now())
	if len(rows) != 1 {
		t.Fatalf("expected summary row, got %d", len(rows))
	}
	if rows[0].FieldModified != nil || rows[0].UserID != nil || rows[0].TableModified != nil {
		t.Fatalf("summary row should carry no field or actor: %+v", rows[0])
	}
	if rows[0].Description != "Deleted alert 4" {
		t.Fatalf("unexpected description %q", rows[0].Description)
	}

	entry.OnlyChanges = true
	if rows := Rows(entry, []Change{{Field: "x", Old: "1", New: "1"}}, time.Now()); len(rows) != 0 {
		t.Fatalf("OnlyChanges entry with no change wrote %d rows", len(rows))
	}
}

func TestDiffAndFormat(t *testing.T) {
	threshold := 2.5
	var changes []Change
	changes = Diff(changes, "quantity", 10.0, 10.0)
	changes = Diff(changes, "alert_threshold", (*float64)(nil), &threshold)
	changes = Diff(changes, "is_read", false, true)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if changes[0].Old != "" || changes[0].New != "2.5" {
		t.Fatalf("unexpected threshold change %+v", changes[0])
	}
	if changes[1].Old != "false" || changes[1].New != "true" {
		t.Fatalf("unexpected bool change %+v", changes[1])
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	if got := Format(ts); got != "2024-01-02T02:04:05Z" {
		t.Fatalf("unexpected time format %q", got)
	}
	if got := Format(int64(42)); got != "42" {
		t.Fatalf("unexpected int format %q", got)
	}
}

func countLogs(t *testing.T, m *memory.Store) int64 {
	t.Helper()
	_, total, err := m.ListLogs(context.Background(), repo.ActivityQuery{})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	return total
}

func TestMutateCommitsWithRows(t *testing.T) {
	m := memory.New()
	rec := NewRecorder(m)
	item := &model.ChemicalInventory{Name: "Acetone", Unit: "L", Quantity: 3}
	entry := &Entry{Action: CreateChemical, Table: "chemical_inventory"}

	err := Mutate(context.Background(), m, rec, entry, func(txCtx context.Context) ([]Change, error) {
		if err := m.CreateChemical(txCtx, item); err != nil {
			return nil, err
		}
		entry.RecordID = item.ID
		return nil, nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if _, err := m.GetChemical(context.Background(), item.ID); err != nil {
		t.Fatalf("chemical not stored: %v", err)
	}
	if n := countLogs(t, m); n != 1 {
		t.Fatalf("expected 1 log row, got %d", n)
	}
}

func TestMutateRollsBackWhenLogWriteFails(t *testing.T) {
	m := memory.New()
	m.LogWriteErr = errors.New("disk full")
	rec := NewRecorder(m)
	item := &model.ChemicalInventory{Name: "Acetone", Unit: "L", Quantity: 3}

	err := Mutate(context.Background(), m, rec, &Entry{Action: CreateChemical}, func(txCtx context.Context) ([]Change, error) {
		return nil, m.CreateChemical(txCtx, item)
	})
	if code.CodeOf(err) != code.AuditRecordErr {
		t.Fatalf("expected audit record error, got %v", err)
	}
	if _, err := m.GetChemical(context.Background(), item.ID); !errors.Is(err, code.RecordNotFound) {
		t.Fatalf("chemical should have been rolled back, got %v", err)
	}
	m.LogWriteErr = nil
	if n := countLogs(t, m); n != 0 {
		t.Fatalf("expected no log rows, got %d", n)
	}
}

func TestMutateSkipsRecordOnMutationError(t *testing.T) {
	m := memory.New()
	rec := NewRecorder(m)
	boom := code.ParamErr.WithMsg("bad input")

	err := Mutate(context.Background(), m, rec, &Entry{Action: UpdateAlert}, func(context.Context) ([]Change, error) {
		return nil, boom
	})
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if n := countLogs(t, m); n != 0 {
		t.Fatalf("expected no log rows, got %d", n)
	}
}
