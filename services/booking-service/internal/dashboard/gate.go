package dashboard

import "context"

// Gate asks the acting worker before anything is mutated.
type Gate interface {
	// Confirm is the yes/no step in front of every action.
	Confirm(ctx context.Context, question string) bool
	// Prompt collects optional free text. ok=false means the worker declined
	// the prompt and the action is abandoned.
	Prompt(ctx context.Context, question string) (answer string, ok bool)
}

// Answers is a Gate whose replies were collected up front, as they are for a
// single HTTP request. A nil Reason declines the prompt.
type Answers struct {
	Confirmed bool
	Reason    *string
}

func (a Answers) Confirm(context.Context, string) bool {
	return a.Confirmed
}

func (a Answers) Prompt(context.Context, string) (string, bool) {
	if a.Reason == nil {
		return "", false
	}
	return *a.Reason, true
}
