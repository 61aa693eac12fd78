// Package codec encodes the actions embedded in inline keyboard buttons.
//
// A payload is a tag followed by `|`-separated fields:
//
//	r|<answer id>|<rating>|<predictor>   rate an answer
//	x|<pending token>                    escalate a question to the experts
//
// Telegram limits callback data to 64 bytes, so encoding fails
// instead of producing a payload that would be rejected.
package codec

import (
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// MaxPayloadLen is the telegram callback_data ceiling in bytes
const MaxPayloadLen = 64

const (
	sep           = "|"
	tagRating     = "r"
	tagEscalation = "x"
)

var (
	// ErrDecode payload was not produced by Encode, callers should ignore it
	ErrDecode = errors.New("unrecognized callback payload")
	// ErrTokenTooLong encoded payload exceeds MaxPayloadLen
	ErrTokenTooLong = errors.New("callback payload too long")
	// ErrInvalidAction action fields are out of range
	ErrInvalidAction = errors.New("invalid callback action")
)

// Action is either RatingAction or EscalationAction
type Action interface {
	tag() string
}

// RatingAction rates one answer of one predictor
type RatingAction struct {
	AnswerID int64
	Rating   int
	// Predictor is the raw name, never markdown-escaped
	Predictor string
}

func (RatingAction) tag() string { return tagRating }

// EscalationAction asks the experts about a cached question
type EscalationAction struct {
	PendingToken string
}

func (EscalationAction) tag() string { return tagEscalation }

// Encode serializes act into callback data
func Encode(act Action) (string, error) {
	var payload string
	switch a := act.(type) {
	case RatingAction:
		if a.Rating < model.MinRating || a.Rating > model.MaxRating {
			return "", errors.Wrapf(ErrInvalidAction, "rating %d", a.Rating)
		}
		payload = strings.Join([]string{
			tagRating,
			strconv.FormatInt(a.AnswerID, 10),
			strconv.Itoa(a.Rating),
			a.Predictor,
		}, sep)
	case EscalationAction:
		if a.PendingToken == "" || strings.Contains(a.PendingToken, sep) {
			return "", errors.Wrapf(ErrInvalidAction, "pending token %q", a.PendingToken)
		}
		payload = tagEscalation + sep + a.PendingToken
	default:
		return "", errors.Wrapf(ErrInvalidAction, "unknown action %T", act)
	}

	if len(payload) > MaxPayloadLen {
		return "", errors.Wrapf(ErrTokenTooLong, "%d bytes", len(payload))
	}

	return payload, nil
}

// Decode parses callback data produced by Encode.
// Any other input returns an error wrapping ErrDecode,
// including non-canonical spellings like "r|07|+3|C".
func Decode(payload string) (Action, error) {
	act, err := decode(payload)
	if err != nil {
		return nil, err
	}

	if canonical, err := Encode(act); err != nil || canonical != payload {
		return nil, errors.Wrapf(ErrDecode, "non-canonical payload %q", payload)
	}

	return act, nil
}

func decode(payload string) (Action, error) {
	tag, rest, ok := strings.Cut(payload, sep)
	if !ok {
		return nil, errors.Wrapf(ErrDecode, "no tag in %q", payload)
	}

	switch tag {
	case tagRating:
		fields := strings.SplitN(rest, sep, 3)
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrDecode, "rating fields in %q", payload)
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrDecode, "answer id %q", fields[0])
		}
		rating, err := strconv.Atoi(fields[1])
		if err != nil || rating < model.MinRating || rating > model.MaxRating {
			return nil, errors.Wrapf(ErrDecode, "rating %q", fields[1])
		}

		return RatingAction{
			AnswerID:  id,
			Rating:    rating,
			Predictor: fields[2],
		}, nil
	case tagEscalation:
		if rest == "" || strings.Contains(rest, sep) {
			return nil, errors.Wrapf(ErrDecode, "pending token %q", rest)
		}
		return EscalationAction{PendingToken: rest}, nil
	default:
		return nil, errors.Wrapf(ErrDecode, "unknown tag %q", tag)
	}
}
