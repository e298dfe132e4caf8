package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// GeneratedQuestion is an AI response that passed validation for its type.
type GeneratedQuestion struct {
	Type     Type
	Question string
	Options  []string
	Answer   string
}

type generatedPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type judgement struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// StripCodeFences removes a surrounding markdown code fence (``` or ```json).
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// decodeObject parses raw AI text into a JSON object.
func decodeObject(raw string) (map[string]any, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, errors.New("empty response")
	}
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// ParseGenerated turns a raw generator response into a validated question of
// type t. Only true/false options are ever backfilled; any other missing or
// malformed field rejects the response.
func ParseGenerated(t Type, raw string) (GeneratedQuestion, error) {
	const op = "parse_generated"

	obj, err := decodeObject(raw)
	if err != nil {
		return GeneratedQuestion{}, parseFailure(op, "AI response is not a JSON object", err)
	}

	if _, ok := obj["options"]; !ok && t == TypeTrueFalse {
		obj["options"] = []any{"true", "false"}
	}

	if err := validateAgainst(string(t), obj); err != nil {
		return GeneratedQuestion{}, parseFailure(op, fmt.Sprintf("AI response does not match the %s shape", t), err)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return GeneratedQuestion{}, parseFailure(op, "re-encode AI response", err)
	}
	var p generatedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return GeneratedQuestion{}, parseFailure(op, "decode AI response", err)
	}

	return canonicalize(t, p)
}

// canonicalize fixes the stored answer form: an option key for multiple
// choice, the option value for true/false.
func canonicalize(t Type, p generatedPayload) (GeneratedQuestion, error) {
	const op = "canonicalize"

	out := GeneratedQuestion{
		Type:     t,
		Question: strings.TrimSpace(p.Question),
		Answer:   strings.TrimSpace(p.Answer),
	}
	if out.Question == "" {
		return GeneratedQuestion{}, parseFailure(op, "question text is blank", nil)
	}
	if out.Answer == "" {
		return GeneratedQuestion{}, parseFailure(op, "answer is blank", nil)
	}

	switch t {
	case TypeMultipleChoice:
		out.Options = p.Options
		if isOptionKey(out.Answer, len(p.Options)) {
			out.Answer = strings.ToUpper(out.Answer)
			return out, nil
		}
		idx, ok := matchOption(out.Answer, p.Options)
		if !ok {
			return GeneratedQuestion{}, parseFailure(op, fmt.Sprintf("answer %q does not reference exactly one option", out.Answer), nil)
		}
		out.Answer = IndexToKey(idx)
	case TypeTrueFalse:
		out.Options = p.Options
		if idx, ok := matchOption(out.Answer, p.Options); ok {
			out.Answer = p.Options[idx]
			return out, nil
		}
		if isOptionKey(out.Answer, len(p.Options)) {
			idx, _ := KeyToIndex(out.Answer)
			out.Answer = p.Options[idx]
			return out, nil
		}
		return GeneratedQuestion{}, parseFailure(op, fmt.Sprintf("answer %q is not one of the options", out.Answer), nil)
	case TypeShortAnswer:
		out.Options = nil
	default:
		return GeneratedQuestion{}, parseFailure(op, fmt.Sprintf("unsupported type %q", t), nil)
	}
	return out, nil
}

// matchOption finds the single option equal to answer after normalization.
func matchOption(answer string, options []string) (int, bool) {
	found := -1
	want := Normalize(answer)
	for i, opt := range options {
		if Normalize(opt) != want {
			continue
		}
		if found >= 0 {
			return -1, false
		}
		found = i
	}
	return found, found >= 0
}

// ParseJudgement decodes the short-answer grader's verdict.
func ParseJudgement(raw string) (isCorrect bool, feedback string, err error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return false, "", err
	}
	if err := validateAgainst(judgementSchema, obj); err != nil {
		return false, "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return false, "", err
	}
	var j judgement
	if err := json.Unmarshal(data, &j); err != nil {
		return false, "", err
	}
	return j.IsCorrect, j.Feedback, nil
}
