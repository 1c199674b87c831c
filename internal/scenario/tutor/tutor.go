// Package tutor is the quiz-tutoring demo: the agent runs a quiz on one
// topic at a time and files the session result when it ends.
package tutor

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"parley/agent/internal/ledger"
	"parley/agent/internal/tools"
)

// DefaultTopics returns the built-in question banks, keyed by topic id. The
// bank only feeds the response generator; grading happens through
// record_answer.
func DefaultTopics() map[string][]string {
	return map[string][]string{
		"fractions": {
			"What is one half plus one quarter?",
			"Which is larger, two thirds or three fifths?",
			"Simplify six eighths.",
		},
		"geography": {
			"What is the capital of Japan?",
			"Which river runs through Cairo?",
			"Name the largest ocean.",
		},
		"grammar": {
			"Pick the verb in: the dog chased the ball.",
			"Is 'quickly' an adjective or an adverb?",
			"Plural of 'mouse'?",
		},
	}
}

type Facade struct {
	topics map[string][]string
	led    *ledger.Log
	ui     tools.Notifier

	mu      sync.Mutex
	topic   string
	asked   int
	correct int
}

func New(topics map[string][]string, led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{topics: topics, led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "start_quiz",
			Description: "Start a quiz on a topic. Args: topic.",
			Handler:     f.startQuiz,
		},
		{
			Name:        "next_question",
			Description: "Fetch the next question of the active quiz.",
			Handler:     f.nextQuestion,
		},
		{
			Name:        "record_answer",
			Description: "Grade the student's last answer. Args: correct (true/false).",
			Handler:     f.recordAnswer,
		},
		{
			Name:        "end_quiz",
			Description: "End the quiz and save the session result.",
			Handler:     f.endQuiz,
		},
	}
}

func (f *Facade) startQuiz(ctx context.Context, args map[string]any) tools.Result {
	topic, ok := tools.String(args, "topic")
	if !ok {
		return tools.Incomplete("Which topic should we practice? Options: %s.", f.topicList())
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if _, ok := f.topics[topic]; !ok {
		return tools.NotFound("I do not have a %q quiz. Options: %s.", topic, f.topicList())
	}

	f.mu.Lock()
	f.topic = topic
	f.asked = 0
	f.correct = 0
	f.mu.Unlock()

	f.ui.Broadcast(ctx, "quiz_started", map[string]any{"topic": topic})
	return tools.OK("Quiz on %s started. Ask the first question.", topic)
}

func (f *Facade) nextQuestion(ctx context.Context, args map[string]any) tools.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topic == "" {
		return tools.Incomplete("No quiz is running. Start one first.")
	}
	bank := f.topics[f.topic]
	if f.asked >= len(bank) {
		return tools.OK("That was the last %s question. End the quiz to see the score.", f.topic)
	}
	q := bank[f.asked]
	f.asked++
	return tools.OK("Question %d: %s", f.asked, q)
}

func (f *Facade) recordAnswer(ctx context.Context, args map[string]any) tools.Result {
	correct, ok := tools.Bool(args, "correct")
	if !ok {
		return tools.Incomplete("Tell me whether the answer was correct (true or false).")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topic == "" {
		return tools.Incomplete("No quiz is running. Start one first.")
	}
	if f.asked == 0 {
		return tools.Incomplete("No question has been asked yet.")
	}
	if correct {
		f.correct++
		return tools.OK("Marked correct. Score so far: %d of %d.", f.correct, f.asked)
	}
	return tools.OK("Marked wrong. Score so far: %d of %d.", f.correct, f.asked)
}

func (f *Facade) endQuiz(ctx context.Context, args map[string]any) tools.Result {
	f.mu.Lock()
	topic, asked, correct := f.topic, f.asked, f.correct
	f.topic, f.asked, f.correct = "", 0, 0
	f.mu.Unlock()

	if topic == "" {
		return tools.Incomplete("No quiz is running.")
	}
	if asked == 0 {
		return tools.Incomplete("No questions were asked; nothing to save.")
	}

	id, err := f.led.Append(map[string]any{
		"topic":   topic,
		"asked":   asked,
		"correct": correct,
	})
	if err != nil {
		log.Printf("tutor: save quiz result: %v", err)
		return tools.Failed("The result could not be saved. Apologize and move on.")
	}
	f.ui.Broadcast(ctx, "quiz_finished", map[string]any{"result_id": id, "topic": topic})
	return tools.OK("Quiz over: %d of %d on %s. Result %s saved.", correct, asked, topic, id).
		WithData(map[string]any{"result_id": id})
}

func (f *Facade) topicList() string {
	names := make([]string, 0, len(f.topics))
	for name := range f.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
