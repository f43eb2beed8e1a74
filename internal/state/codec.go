package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeAction wraps a in a {"type", "payload"} envelope.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrUnknownAction
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", a.Kind(), err)
	}
	return json.Marshal(envelope{Type: a.Kind(), Payload: payload})
}

// DecodeAction reverses EncodeAction.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal action envelope: %w", err)
	}

	switch env.Type {
	case KindSetUser:
		return decodePayload[SetUser](env)
	case KindLogout:
		return Logout{}, nil
	case KindAddExpense:
		return decodePayload[AddExpense](env)
	case KindUpdateExpense:
		return decodePayload[UpdateExpense](env)
	case KindDeleteExpense:
		return decodePayload[DeleteExpense](env)
	case KindSetBudgets:
		return decodePayload[SetBudgets](env)
	case KindAddChatMessage:
		return decodePayload[AddChatMessage](env)
	case KindSetInvestments:
		return decodePayload[SetInvestments](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
}

func decodePayload[T Action](env envelope) (Action, error) {
	var v T
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
	}
	return v, nil
}
