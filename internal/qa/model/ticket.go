package model

import "github.com/Laisky/errors/v2"

// TicketStatus is the lifecycle stage of an expert ticket
type TicketStatus string

const (
	// TicketRequested the question has been forwarded to the expert chat
	TicketRequested TicketStatus = "requested"
	// TicketAnswered an expert replied to the forwarded question
	TicketAnswered TicketStatus = "answered"
	// TicketRelayed the expert's answer reached the asker, terminal
	TicketRelayed TicketStatus = "relayed"
)

// ErrInvalidTransition is returned when a ticket is moved out of order
var ErrInvalidTransition = errors.New("invalid ticket transition")

var ticketTransitions = map[TicketStatus]TicketStatus{
	TicketRequested: TicketAnswered,
	TicketAnswered:  TicketRelayed,
}

// ExpertTicket correlates a question forwarded to the experts with its answer.
// Its wire format belongs to the web API client.
type ExpertTicket struct {
	QuestionText   string
	QuestionChatID int64
	QuestionMsgID  int

	ExpertQuestionChatID int64
	ExpertQuestionMsgID  int

	ExpertAnswerText  string
	ExpertAnswerMsgID int
	ExpertUserID      int64

	Status TicketStatus
}

// Advance moves the ticket one step forward.
// Only requested -> answered -> relayed is allowed.
func (t *ExpertTicket) Advance(to TicketStatus) error {
	if next, ok := ticketTransitions[t.Status]; !ok || next != to {
		return errors.Wrapf(ErrInvalidTransition, "%q -> %q", t.Status, to)
	}

	t.Status = to
	return nil
}

// Terminal reports whether the ticket can no longer change
func (t *ExpertTicket) Terminal() bool {
	return t.Status == TicketRelayed
}
