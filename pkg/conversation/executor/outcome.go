package executor

import (
	"drive-copilot-be/pkg/store"
)

// Reply is what the client receives for one message.
type Reply struct {
	Message           string
	NeedsConfirmation bool
	ConfirmationType  string
	DocURL            string
}

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeComplete
	outcomeFail
	outcomeReparse
)

// Outcome is the result of one handler step. The dispatcher applies it to the
// conversation store: Continue saves the pending action, Complete and Fail
// clear it, Reparse clears it and treats the message as a new request.
type Outcome struct {
	kind    outcomeKind
	pending *store.PendingAction
	reply   Reply
	err     error
}

func Continue(pending *store.PendingAction, reply Reply) Outcome {
	return Outcome{kind: outcomeContinue, pending: pending, reply: reply}
}

func Complete(reply Reply) Outcome {
	return Outcome{kind: outcomeComplete, reply: reply}
}

func Fail(err error) Outcome {
	return Outcome{kind: outcomeFail, err: err}
}

func Reparse() Outcome {
	return Outcome{kind: outcomeReparse}
}

func ask(pending *store.PendingAction, message, confirmationType string) Outcome {
	return Continue(pending, Reply{
		Message:           message,
		NeedsConfirmation: true,
		ConfirmationType:  confirmationType,
	})
}

func say(message string) Outcome {
	return Complete(Reply{Message: message})
}
