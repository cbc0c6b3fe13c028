// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delta

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RewriteURLs replaces the prefix from with to in embed values and "link"
// attributes. Content that does not mention from is returned untouched.
func RewriteURLs(raw json.RawMessage, from, to string) json.RawMessage {
	if from == "" || !bytes.Contains(raw, []byte(from)) {
		return raw
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var document map[string]any
	if decoder.Decode(&document) != nil {
		return raw
	}

	ops, ok := document["ops"].([]any)
	if !ok {
		return raw
	}

	swap := func(value any) any {
		if text, ok := value.(string); ok && strings.HasPrefix(text, from) {
			return to + strings.TrimPrefix(text, from)
		}
		return value
	}

	for _, element := range ops {
		op, ok := element.(map[string]any)
		if !ok {
			continue
		}
		if embed, ok := op["insert"].(map[string]any); ok {
			for key, value := range embed {
				embed[key] = swap(value)
			}
		}
		if attributes, ok := op["attributes"].(map[string]any); ok {
			if link, found := attributes["link"]; found {
				attributes["link"] = swap(link)
			}
		}
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(document); err != nil {
		return raw
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n"))
}
