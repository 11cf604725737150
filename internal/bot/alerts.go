package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher sends newly flagged screener anomalies to subscribed chats.
// A chat only hears about scores at or above its own floor; a zero floor
// accepts everything the screener flags.
type AlertDispatcher struct {
	sender messageSender

	mu     sync.RWMutex
	floors map[int64]float64
}

func NewAlertDispatcher(sender messageSender) *AlertDispatcher {
	return &AlertDispatcher{sender: sender, floors: make(map[int64]float64)}
}

// Subscribe sets the chat's floor and reports whether the chat was new.
func (d *AlertDispatcher) Subscribe(chatID int64, floor float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, existed := d.floors[chatID]
	d.floors[chatID] = floor
	return !existed
}

func (d *AlertDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.floors[chatID]; !ok {
		return false
	}
	delete(d.floors, chatID)
	return true
}

func (d *AlertDispatcher) Subscription(chatID int64) (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	floor, ok := d.floors[chatID]
	return floor, ok
}

func (d *AlertDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.floors)
}

// NotifyAnomalies delivers one message per chat listing the anomalies above
// that chat's floor. A failing chat does not stop delivery to the others.
func (d *AlertDispatcher) NotifyAnomalies(ctx context.Context, flagged []domain.AnomalyScore) error {
	if d == nil || d.sender == nil || len(flagged) == 0 {
		return nil
	}

	var errs []error
	for _, sub := range d.subscriptions() {
		if err := ctx.Err(); err != nil {
			return err
		}
		picked := aboveFloor(flagged, sub.floor)
		if len(picked) == 0 {
			continue
		}
		if _, err := d.sender.Send(&tele.Chat{ID: sub.chatID}, formatAnomalyMessage(picked)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", sub.chatID, err))
		}
	}
	return errors.Join(errs...)
}

type subscription struct {
	chatID int64
	floor  float64
}

func (d *AlertDispatcher) subscriptions() []subscription {
	d.mu.RLock()
	subs := make([]subscription, 0, len(d.floors))
	for chatID, floor := range d.floors {
		subs = append(subs, subscription{chatID: chatID, floor: floor})
	}
	d.mu.RUnlock()

	slices.SortFunc(subs, func(a, b subscription) int {
		switch {
		case a.chatID < b.chatID:
			return -1
		case a.chatID > b.chatID:
			return 1
		}
		return 0
	})
	return subs
}

func aboveFloor(flagged []domain.AnomalyScore, floor float64) []domain.AnomalyScore {
	out := make([]domain.AnomalyScore, 0, len(flagged))
	for _, a := range flagged {
		if a.Score >= floor {
			out = append(out, a)
		}
	}
	return out
}

type alertCommand struct {
	mode  string
	floor float64
}

// parseAlertCommand reads "/alerts [on [floor]|off|status]". The floor is an
// isolation-forest score in [0, 1].
func parseAlertCommand(args []string) (alertCommand, error) {
	if len(args) == 0 {
		return alertCommand{mode: "status"}, nil
	}

	mode := strings.ToLower(strings.TrimSpace(args[0]))
	switch mode {
	case "off", "status":
		if len(args) > 1 {
			return alertCommand{}, fmt.Errorf("%s takes no arguments", mode)
		}
		return alertCommand{mode: mode}, nil
	case "on":
		cmd := alertCommand{mode: mode}
		if len(args) > 2 {
			return alertCommand{}, fmt.Errorf("too many arguments")
		}
		if len(args) == 2 {
			floor, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil || floor < 0 || floor > 1 {
				return alertCommand{}, fmt.Errorf("floor must be a score between 0 and 1")
			}
			cmd.floor = floor
		}
		return cmd, nil
	default:
		return alertCommand{}, fmt.Errorf("invalid mode %q", mode)
	}
}

func formatAnomalyMessage(flagged []domain.AnomalyScore) string {
	var b strings.Builder
	b.WriteString("Screener anomaly alert:")
	for _, a := range flagged {
		fmt.Fprintf(&b, "\n%s score %.3f", a.Symbol, a.Score)
	}
	return b.String()
}

func alertStatus(floor float64, subscribed bool) string {
	switch {
	case !subscribed:
		return "Alerts status: OFF"
	case floor > 0:
		return fmt.Sprintf("Alerts status: ON (score >= %.2f)", floor)
	default:
		return "Alerts status: ON"
	}
}
