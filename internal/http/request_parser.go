// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; both are read through RequestBodyParser.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
	"finsage/internal/services"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// MonthToken returns the raw month query value. The report layer resolves
// malformed or missing tokens to the current month.
func MonthToken(query url.Values) string {
	return query.Get("month")
}

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// TransactionInput is the decoded body of a create or update request.
// Nil fields were absent from the body.
type TransactionInput struct {
	Category *string
	Amount   *decimal.Decimal
	Date     *time.Time
}

// ParseTransactionInput reads category (or its alias name), amount and date.
// Dates are interpreted as midnight in loc.
func ParseTransactionInput(p *RequestBodyParser, loc *time.Location) (TransactionInput, error) {
	var in TransactionInput
	for _, key := range []string{"category", "name"} {
		if p.Has(key) {
			category := p.Get(key)
			in.Category = &category
			break
		}
	}
	if p.Has("amount") {
		amount, err := core.ParseAmount(p.Get("amount"))
		if err != nil {
			return TransactionInput{}, err
		}
		in.Amount = &amount
	}
	if p.Has("date") {
		date, err := parseDate(p.Get("date"), loc)
		if err != nil {
			return TransactionInput{}, err
		}
		in.Date = &date
	}
	return in, nil
}

// Patch converts the input into a partial update.
func (in TransactionInput) Patch() services.TransactionPatch {
	return services.TransactionPatch{
		Category:  in.Category,
		Amount:    in.Amount,
		Timestamp: in.Date,
	}
}
