package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Error bag ────────────────────────────────────────────────────────────────

// Errors collects validation failures per field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field, or "".
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules maps field → pipe-separated rule string.
//
//	Rules{"email": "required|email", "age": "required|integer|gte:18"}
type Rules map[string]string

// Validator validates a flat map of input values against Rules.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{data: data, rules: rules, errors: &Errors{}}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

func (v *Validator) validate() {
	for field, ruleStr := range v.rules {
		value := v.data[field]

		for _, raw := range strings.Split(ruleStr, "|") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			name, param, _ := strings.Cut(raw, ":")

			if name == "sometimes" {
				if value == "" {
					break // field absent: skip remaining rules silently
				}
				continue
			}

			check, ok := rules[name]
			if !ok {
				continue // unknown rules pass through, matching lenient rule sets
			}
			if msg := check(v.data, field, value, param); msg != "" {
				v.errors.add(field, msg)
				break // first failure per field wins (bail behaviour)
			}
		}
	}
}

// ── Rule table ───────────────────────────────────────────────────────────────

// ruleFunc returns "" on pass, otherwise the failure message.
type ruleFunc func(data map[string]string, field, value, param string) string

var (
	alphaRe     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	urlRe       = regexp.MustCompile(`^https?://`)
)

var rules = map[string]ruleFunc{
	"required": func(_ map[string]string, field, value, _ string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	},
	"string": func(_ map[string]string, _, _, _ string) string {
		return "" // form input is always a string; presence is enough
	},
	"nullable": func(_ map[string]string, _, _, _ string) string {
		return ""
	},
	"numeric": func(_ map[string]string, field, value, _ string) string {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Sprintf("The %s must be a number.", field)
		}
		return ""
	},
	"integer": func(_ map[string]string, field, value, _ string) string {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("The %s must be an integer.", field)
		}
		return ""
	},
	"boolean": func(_ map[string]string, field, value, _ string) string {
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no":
			return ""
		}
		return fmt.Sprintf("The %s field must be true or false.", field)
	},
	"email": func(_ map[string]string, field, value, _ string) string {
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
		return ""
	},
	"url": func(_ map[string]string, field, value, _ string) string {
		if !urlRe.MatchString(value) {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
		return ""
	},
	"min": func(_ map[string]string, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("The %s must be at least %d characters.", field, n)
		}
		return ""
	},
	"max": func(_ map[string]string, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("The %s may not be greater than %d characters.", field, n)
		}
		return ""
	},
	"size": func(_ map[string]string, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) != n {
			return fmt.Sprintf("The %s must be %d characters.", field, n)
		}
		return ""
	},
	"between": func(_ map[string]string, field, value, param string) string {
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		minLen, _ := strconv.Atoi(strings.TrimSpace(lo))
		maxLen, _ := strconv.Atoi(strings.TrimSpace(hi))
		if l := utf8.RuneCountInString(value); l < minLen || l > maxLen {
			return fmt.Sprintf("The %s must be between %d and %d characters.", field, minLen, maxLen)
		}
		return ""
	},
	"in": func(_ map[string]string, field, value, param string) string {
		for _, allowed := range strings.Split(param, ",") {
			if strings.TrimSpace(allowed) == value {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	},
	"not_in": func(_ map[string]string, field, value, param string) string {
		for _, disallowed := range strings.Split(param, ",") {
			if strings.TrimSpace(disallowed) == value {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}
		return ""
	},
	"confirmed": func(data map[string]string, field, value, _ string) string {
		if data[field+"_confirmation"] != value {
			return fmt.Sprintf("The %s confirmation does not match.", field)
		}
		return ""
	},
	"same": func(data map[string]string, field, value, param string) string {
		if data[param] != value {
			return fmt.Sprintf("The %s and %s must match.", field, param)
		}
		return ""
	},
	"different": func(data map[string]string, field, value, param string) string {
		if data[param] == value {
			return fmt.Sprintf("The %s and %s must be different.", field, param)
		}
		return ""
	},
	"alpha": func(_ map[string]string, field, value, _ string) string {
		if !alphaRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters.", field)
		}
		return ""
	},
	"alpha_num": func(_ map[string]string, field, value, _ string) string {
		if !alphaNumRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters and numbers.", field)
		}
		return ""
	},
	"alpha_dash": func(_ map[string]string, field, value, _ string) string {
		if !alphaDashRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field)
		}
		return ""
	},
	"regex": func(_ map[string]string, field, value, param string) string {
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
		return ""
	},
	"gt":  compareRule("gt", "The %s must be greater than %s."),
	"gte": compareRule("gte", "The %s must be greater than or equal to %s."),
	"lt":  compareRule("lt", "The %s must be less than %s."),
	"lte": compareRule("lte", "The %s must be less than or equal to %s."),
}

func compareRule(op, message string) ruleFunc {
	return func(_ map[string]string, field, value, param string) string {
		f, _ := strconv.ParseFloat(value, 64)
		threshold, _ := strconv.ParseFloat(param, 64)
		var pass bool
		switch op {
		case "gt":
			pass = f > threshold
		case "gte":
			pass = f >= threshold
		case "lt":
			pass = f < threshold
		case "lte":
			pass = f <= threshold
		}
		if !pass {
			return fmt.Sprintf(message, field, param)
		}
		return ""
	}
}
