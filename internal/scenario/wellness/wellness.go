// Package wellness is the daily check-in demo: each call records one journal
// entry and the agent can summarize the most recent week.
package wellness

import (
	"context"
	"log"

	"parley/agent/internal/ledger"
	"parley/agent/internal/tools"
)

// weekWindow is how many recent check-ins the summary averages over.
const weekWindow = 7

type Facade struct {
	led *ledger.Log
	ui  tools.Notifier
}

func New(led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "record_checkin",
			Description: "Record today's check-in. Args: mood (1-10), sleep_hours, note (optional).",
			Handler:     f.recordCheckin,
		},
		{
			Name:        "weekly_summary",
			Description: "Average mood and sleep over the most recent week of check-ins.",
			Handler:     f.weeklySummary,
		},
	}
}

func (f *Facade) recordCheckin(ctx context.Context, args map[string]any) tools.Result {
	mood, ok := tools.Int(args, "mood")
	if !ok {
		return tools.Incomplete("I need a mood rating from 1 to 10.")
	}
	if mood < 1 || mood > 10 {
		return tools.Incomplete("Mood should be between 1 and 10, not %d.", mood)
	}
	sleep, ok := tools.Float(args, "sleep_hours")
	if !ok {
		return tools.Incomplete("How many hours did you sleep?")
	}

	entry := map[string]any{"mood": mood, "sleep_hours": sleep}
	if note, ok := tools.String(args, "note"); ok {
		entry["note"] = note
	}

	id, err := f.led.Append(entry)
	if err != nil {
		log.Printf("wellness: save checkin: %v", err)
		return tools.Failed("I could not save the check-in. Apologize and try again.")
	}
	f.ui.Broadcast(ctx, "checkin_recorded", map[string]any{"checkin_id": id})
	return tools.OK("Check-in saved: mood %d, %.1f hours of sleep.", mood, sleep)
}

func (f *Facade) weeklySummary(ctx context.Context, args map[string]any) tools.Result {
	entries, err := f.led.Tail(weekWindow)
	if err != nil {
		log.Printf("wellness: load checkins: %v", err)
		return tools.Failed("I could not read the journal just now.")
	}
	if len(entries) == 0 {
		return tools.NotFound("There are no check-ins yet. Record one first.")
	}

	var moodSum, sleepSum float64
	for _, e := range entries {
		if v, ok := e["mood"].(float64); ok {
			moodSum += v
		}
		if v, ok := e["sleep_hours"].(float64); ok {
			sleepSum += v
		}
	}
	n := float64(len(entries))
	return tools.OK("Over the last %d check-ins: average mood %.1f, average sleep %.1f hours.",
		len(entries), moodSum/n, sleepSum/n).
		WithData(map[string]any{
			"count":     len(entries),
			"avg_mood":  moodSum / n,
			"avg_sleep": sleepSum / n,
		})
}
