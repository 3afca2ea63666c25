package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/notify"
)

func TestLocalDeliversToRegisteredHandler(t *testing.T) {
	l := NewLocal()
	var got []string
	if err := l.Registry(context.Background(), notify.AlertRaised, func(_ context.Context, msg string) error {
		got = append(got, msg)
		return nil
	}); err != nil {
		t.Fatalf("registry: %v", err)
	}
	err := l.Registry(context.Background(), notify.AlertRaised, func(context.Context, string) error { return nil })
	if code.CodeOf(err) != code.NotifyActionAlreadyRegistryErr {
		t.Fatalf("expected duplicate registry error, got %v", err)
	}

	id := int64(4)
	if err := l.Broadcast(context.Background(), &notify.SendMsg{Channel: notify.AlertRaised, ChemicalID: &id, Data: "low"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	// no handler for this channel is not an error
	if err := l.Broadcast(context.Background(), &notify.SendMsg{Channel: notify.NotificationCreated}); err != nil {
		t.Fatalf("broadcast without handler: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected one delivery, got %d", len(got))
	}
	var msg notify.SendMsg
	if err := json.Unmarshal([]byte(got[0]), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Channel != notify.AlertRaised || *msg.ChemicalID != 4 || msg.Timestamp == 0 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestReaches(t *testing.T) {
	msg := &notify.SendMsg{Recipients: []common.Role{common.Product}}
	cases := map[common.Role]bool{
		common.Admin:    true,
		common.Product:  true,
		common.LabStaff: false,
	}
	for role, want := range cases {
		if got := msg.Reaches(role); got != want {
			t.Fatalf("Reaches(%s) = %v, want %v", role, got, want)
		}
	}
	if !(&notify.SendMsg{}).Reaches(common.AllUsers) {
		t.Fatal("a message without recipients reaches everyone")
	}
}
