package types

import (
	"encoding/json"
	"fmt"
)

// The dataset is serialized with seasons and enums in their page-facing
// string forms, so an output file reads like the site it came from.

func (s Season) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Season) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeason(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (d Division) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Division) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDivision(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.URLName())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, candidate := range []Month{November, December, January, February, March, Open} {
		if candidate.URLName() == raw {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown month %q", raw)
}

func (c FinalistCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *FinalistCategory) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "finalist":
		*c = CategoryFinalist
	case "egoi":
		*c = CategoryEGOI
	case "unspecified":
		*c = CategoryUnspecified
	default:
		return fmt.Errorf("unknown finalist category %q", raw)
	}
	return nil
}

func (k CompetitionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *CompetitionKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "IOI":
		*k = IOI
	case "EGOI":
		*k = EGOI
	default:
		return fmt.Errorf("unknown competition %q", raw)
	}
	return nil
}
