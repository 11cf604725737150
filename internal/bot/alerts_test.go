package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	tele "gopkg.in/telebot.v3"
)

func TestParseAlertCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    alertCommand
		wantErr bool
	}{
		{args: nil, want: alertCommand{mode: "status"}},
		{args: []string{"on"}, want: alertCommand{mode: "on"}},
		{args: []string{"ON", "0.75"}, want: alertCommand{mode: "on", floor: 0.75}},
		{args: []string{"OFF"}, want: alertCommand{mode: "off"}},
		{args: []string{"on", "1.5"}, wantErr: true},
		{args: []string{"on", "high"}, wantErr: true},
		{args: []string{"off", "now"}, wantErr: true},
		{args: []string{"nope"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseAlertCommand(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%v: expected error, got %+v", tt.args, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%v: expected %+v, got %+v err=%v", tt.args, tt.want, got, err)
		}
	}
}

func TestAlertDispatcherNotifyAnomalies(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)

	if !dispatcher.Subscribe(10, 0) {
		t.Fatal("expected initial subscribe to return true")
	}
	if !dispatcher.Subscribe(20, 0) {
		t.Fatal("expected initial subscribe to return true")
	}
	if dispatcher.Subscribe(10, 0) {
		t.Fatal("expected repeat subscribe to return false")
	}
	if dispatcher.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", dispatcher.SubscriberCount())
	}

	flagged := []domain.AnomalyScore{{Symbol: "NVDA", Score: 0.7123, Flag: true}}
	if err := dispatcher.NotifyAnomalies(context.Background(), flagged); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(sender.messages[10]) != 1 || len(sender.messages[20]) != 1 {
		t.Fatalf("expected one message per subscriber, got %+v", sender.messages)
	}
	if !strings.Contains(sender.messages[10][0], "NVDA score 0.712") {
		t.Fatalf("unexpected alert body: %s", sender.messages[10][0])
	}
}

func TestAlertDispatcherHonoursChatFloor(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)
	dispatcher.Subscribe(10, 0.8)
	dispatcher.Subscribe(20, 0)

	flagged := []domain.AnomalyScore{
		{Symbol: "AMD", Score: 0.66, Flag: true},
		{Symbol: "TSLA", Score: 0.85, Flag: true},
	}
	if err := dispatcher.NotifyAnomalies(context.Background(), flagged); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}

	if len(sender.messages[10]) != 1 {
		t.Fatalf("expected chat 10 to get one message, got %+v", sender.messages[10])
	}
	if strings.Contains(sender.messages[10][0], "AMD") || !strings.Contains(sender.messages[10][0], "TSLA") {
		t.Fatalf("expected only TSLA above the 0.8 floor, got %q", sender.messages[10][0])
	}
	if !strings.Contains(sender.messages[20][0], "AMD") {
		t.Fatalf("expected chat without a floor to see AMD, got %q", sender.messages[20][0])
	}

	dispatcher.Subscribe(20, 0.9)
	sender.messages = nil
	if err := dispatcher.NotifyAnomalies(context.Background(), flagged); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(sender.messages[20]) != 0 {
		t.Fatalf("expected raised floor to silence chat 20, got %+v", sender.messages[20])
	}
}

func TestAlertDispatcherUnsubscribe(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)

	dispatcher.Subscribe(10, 0)
	if !dispatcher.Unsubscribe(10) {
		t.Fatal("expected unsubscribe to return true")
	}
	if dispatcher.Unsubscribe(10) {
		t.Fatal("expected second unsubscribe to return false")
	}
	if _, ok := dispatcher.Subscription(10); ok {
		t.Fatal("expected chat to be unsubscribed")
	}

	flagged := []domain.AnomalyScore{{Symbol: "TSLA", Score: 0.66, Flag: true}}
	if err := dispatcher.NotifyAnomalies(context.Background(), flagged); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("expected zero outgoing messages, got %+v", sender.messages)
	}
}

func TestAlertDispatcherReportsSendFailures(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{20: true}}
	dispatcher := NewAlertDispatcher(sender)
	dispatcher.Subscribe(10, 0)
	dispatcher.Subscribe(20, 0)

	err := dispatcher.NotifyAnomalies(context.Background(), []domain.AnomalyScore{{Symbol: "AMD", Score: 0.8, Flag: true}})
	if err == nil || !strings.Contains(err.Error(), "chat 20") {
		t.Fatalf("expected failure for chat 20, got %v", err)
	}
	if !errors.Is(err, errBlocked) {
		t.Fatalf("expected the send error to be wrapped, got %v", err)
	}
	if len(sender.messages[10]) != 1 {
		t.Fatalf("expected healthy chat to still receive the alert, got %+v", sender.messages)
	}
}

func TestAlertDispatcherStopsOnCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)
	dispatcher.Subscribe(10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := dispatcher.NotifyAnomalies(ctx, []domain.AnomalyScore{{Symbol: "AMD", Score: 0.8, Flag: true}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("expected nothing sent, got %+v", sender.messages)
	}
}

func TestAlertStatus(t *testing.T) {
	if got := alertStatus(0, false); got != "Alerts status: OFF" {
		t.Fatalf("unexpected status %q", got)
	}
	if got := alertStatus(0, true); got != "Alerts status: ON" {
		t.Fatalf("unexpected status %q", got)
	}
	if got := alertStatus(0.75, true); got != "Alerts status: ON (score >= 0.75)" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestNilAlertDispatcherIsNoop(t *testing.T) {
	var dispatcher *AlertDispatcher
	if err := dispatcher.NotifyAnomalies(context.Background(), []domain.AnomalyScore{{Symbol: "X"}}); err != nil {
		t.Fatalf("expected nil dispatcher to be a no-op, got %v", err)
	}
}

var errBlocked = errors.New("blocked by user")

type fakeSender struct {
	messages map[int64][]string
	fail     map[int64]bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.messages == nil {
		f.messages = make(map[int64][]string)
	}

	chat, ok := to.(*tele.Chat)
	if !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", to)
	}
	if f.fail[chat.ID] {
		return nil, errBlocked
	}
	f.messages[chat.ID] = append(f.messages[chat.ID], fmt.Sprint(what))
	return &tele.Message{}, nil
}
