package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OracleRequest is the payload sent to the ingredient-analysis oracle
type OracleRequest struct {
	ProductName     string          `json:"productName"`
	ProductCategory string          `json:"productCategory"`
	RawIngredients  string          `json:"rawIngredients"`
	UserProfile     *ProfileSummary `json:"userProfile,omitempty"`
	Country         string          `json:"country,omitempty"`
}

// ProfileSummary is the subset of a UserProfile forwarded to the oracle.
// Empty fields are omitted.
type ProfileSummary struct {
	Allergies          []Allergy `json:"allergies,omitempty"`
	Sensitivities      []string  `json:"sensitivities,omitempty"`
	DietaryPreferences []string  `json:"dietaryPreferences,omitempty"`
	Priorities         []string  `json:"priorities,omitempty"`
	AvoidList          []string  `json:"avoidList,omitempty"`
	SeekList           []string  `json:"seekList,omitempty"`
}

// OracleResponse is the analysis-result schema returned by the oracle.
// Every field is optional and decoded leniently: a value of the wrong type is
// left unset so the caller backfills its default, and the rest of the document survives.
type OracleResponse struct {
	Product              *OracleProduct    `json:"product"`
	Ingredients          OracleIngredients `json:"ingredients"`
	OverallRating        FlexNumber        `json:"overall_rating"`
	LetterGrade          FlexString        `json:"letter_grade"`
	PersonalizedWarnings FlexStrings       `json:"personalized_warnings"`
	PersonalizedAdvice   FlexStrings       `json:"personalized_advice"`
	Confidence           FlexNumber        `json:"confidence"`
	Disclaimer           FlexString        `json:"disclaimer"`
}

type OracleProduct struct {
	Name     FlexString `json:"name"`
	Category FlexString `json:"category"`
}

// UnmarshalJSON ignores a product that is not an object
func (p *OracleProduct) UnmarshalJSON(data []byte) error {
	if !isJSONObject(data) {
		return nil
	}
	type plain OracleProduct
	return json.Unmarshal(data, (*plain)(p))
}

type OracleIngredient struct {
	Name         FlexString  `json:"name"`
	Category     FlexString  `json:"category"`
	Description  FlexString  `json:"description"`
	HealthRating FlexString  `json:"healthRating"`
	Concerns     FlexStrings `json:"concerns"`
	Benefits     FlexStrings `json:"benefits"`
	IsVegan      FlexBool    `json:"isVegan"`
	IsNatural    FlexBool    `json:"isNatural"`
	Tags         FlexStrings `json:"tags"`
}

// OracleIngredients keeps the object entries of an ingredient array and drops the rest
type OracleIngredients []OracleIngredient

func (list *OracleIngredients) UnmarshalJSON(data []byte) error {
	*list = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(OracleIngredients, 0, len(items))
	for _, item := range items {
		if !isJSONObject(item) {
			continue
		}
		var ing OracleIngredient
		if err := json.Unmarshal(item, &ing); err != nil {
			continue
		}
		out = append(out, ing)
	}
	*list = out
	return nil
}

// FlexNumber accepts a JSON number or a numeric string such as "85" or "85%".
// Anything else leaves it invalid.
type FlexNumber struct {
	Value float64
	Valid bool
}

// NewFlexNumber returns a valid FlexNumber
func NewFlexNumber(v float64) FlexNumber {
	return FlexNumber{Value: v, Valid: true}
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	*n = FlexNumber{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
		if err != nil {
			return nil
		}
		*n = NewFlexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil && !bytes.Equal(data, []byte("null")) {
		*n = NewFlexNumber(f)
	}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// FlexString accepts a JSON string, or a number kept as its literal text
type FlexString struct {
	Value string
	Valid bool
}

// NewFlexString returns a valid FlexString
func NewFlexString(v string) FlexString {
	return FlexString{Value: v, Valid: true}
}

func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = FlexString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*s = NewFlexString(v)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		*s = NewFlexString(string(data))
	}
	return nil
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// FlexBool accepts a JSON boolean, "yes"/"no"/"true"/"false" strings, or 0/1
type FlexBool struct {
	Value bool
	Valid bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	*b = FlexBool{}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*b = FlexBool{Value: v, Valid: true}
	case float64:
		*b = FlexBool{Value: v != 0, Valid: true}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			*b = FlexBool{Value: true, Valid: true}
		case "false", "no", "n", "0":
			*b = FlexBool{Value: false, Valid: true}
		}
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

// FlexStrings accepts an array of strings or a single string.
// Non-string array entries are dropped.
type FlexStrings []string

func (list *FlexStrings) UnmarshalJSON(data []byte) error {
	*list = nil
	var single FlexString
	if err := single.UnmarshalJSON(data); err == nil && single.Valid {
		*list = FlexStrings{single.Value}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(FlexStrings, 0, len(items))
	for _, item := range items {
		var s FlexString
		if err := s.UnmarshalJSON(item); err == nil && s.Valid {
			out = append(out, s.Value)
		}
	}
	*list = out
	return nil
}

func isJSONObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
