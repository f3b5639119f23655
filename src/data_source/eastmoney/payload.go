package eastmoney

import "encoding/json"

// -----------------------------------------------------------------------------
// Provider Envelopes
// -----------------------------------------------------------------------------

// Field values mix numbers and the "-" sentinel string, so items decode into
// generic maps and go through the normalizer instead of typed struct fields.

type clistEnvelope struct {
	Data *struct {
		Total int             `json:"total"`
		Diff  json.RawMessage `json:"diff"`
	} `json:"data"`
}

type realtimeEnvelope struct {
	Data map[string]interface{} `json:"data"`
}

type klineEnvelope struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// -----------------------------------------------------------------------------

// decodeDiff handles the list-or-object ambiguity of the clist "diff" field:
// some provider versions ship a JSON array, others an object keyed by index.
func decodeDiff(raw json.RawMessage) ([]map[string]interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var keyed map[string]map[string]interface{}
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}
	items = make([]map[string]interface{}, 0, len(keyed))
	for _, item := range keyed {
		items = append(items, item)
	}
	return items, nil
}
