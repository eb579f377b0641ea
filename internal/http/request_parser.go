package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budgeteer/internal/query"
)

const maxBodyBytes = 1 << 20

// Request bodies. All amounts are authored as decimal strings ("12.34")
// and parsed through the shared money parser.
type (
	materializeRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		// AnchorDate is the reference day the template's relative offsets
		// are applied to. Empty means today.
		AnchorDate string `json:"anchorDate"`
	}

	createBudgetRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}

	createTransactionRequest struct {
		CategoryID  string `json:"categoryId"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Date        string `json:"date"`
		IsPosted    bool   `json:"isPosted"`
		IsRecurring bool   `json:"isRecurring"`
		Frequency   string `json:"frequency"`
		DayOfMonth  int    `json:"dayOfMonth"`
	}
)

// decodeJSON reads a bounded JSON body into dst. Trailing garbage after
// the document is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// parseDay parses a calendar-day parameter.
func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(dayFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// parseFilter builds a transaction filter from query parameters.
//
//	search       substring match on description, case-insensitive
//	categoryIds  comma-separated set; wins over categoryId when present
//	categoryId   single category
//	posted       true|false
//	recurring    true|false
//	from, to     inclusive calendar-day bounds, either side optional
func parseFilter(q url.Values) (query.Filter, error) {
	f := query.Filter{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
	}

	if raw := q.Get("categoryIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
		}
	}

	var err error
	if f.Posted, err = parseBoolParam(q, "posted"); err != nil {
		return query.Filter{}, err
	}
	if f.Recurring, err = parseBoolParam(q, "recurring"); err != nil {
		return query.Filter{}, err
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		// An open end stays unbounded on that side.
		dr := query.DateRange{End: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
		if from != "" {
			if dr.Start, err = parseDay(from); err != nil {
				return query.Filter{}, err
			}
		}
		if to != "" {
			if dr.End, err = parseDay(to); err != nil {
				return query.Filter{}, err
			}
		}
		f.DateRange = &dr
	}

	return f, nil
}

func parseBoolParam(q url.Values, name string) (*bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	return &v, nil
}
