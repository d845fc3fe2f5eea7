package countries

import (
	"bytes"
	"encoding/json"
)

// entries decodes either a single RestCountries object or an array of them.
type entries []restCountriesEntry

func (e *entries) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var one restCountriesEntry
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*e = entries{one}
		return nil
	}

	var many []restCountriesEntry
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*e = many
	return nil
}
