package planning

import (
	"errors"

	"github.com/alexanderramin/planpilot/internal/llm"
)

// ExtractRecords isolates the task list in a raw model reply and decodes it
// into generic records. The list is taken from the first '[' to the last ']';
// a reply whose prose contains its own bracket pair outside the payload is
// not disambiguated and usually fails to decode.
//
// No field-level checks happen here. Every failure is a *MalformedResponseError.
func ExtractRecords(raw string) ([]map[string]any, error) {
	span, ok := llm.ArraySpan(raw)
	if !ok {
		return nil, &MalformedResponseError{Payload: raw, Reason: "no bracketed task list in reply"}
	}

	records, err := llm.DecodeArray[map[string]any](span, nonNullRecord)
	if err != nil {
		return nil, &MalformedResponseError{
			Payload: span,
			Reason:  "task list is not a JSON array of objects",
			Err:     err,
		}
	}
	return records, nil
}

func nonNullRecord(r map[string]any) error {
	if r == nil {
		return errors.New("null record")
	}
	return nil
}
