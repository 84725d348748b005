package grid

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Request parameter names recognized by DecodeRequest.
const (
	paramFilters    = "filters"
	paramSortField  = "sortField"
	paramSortOrder  = "sortOrder"
	paramPageSize   = "pageSize"
	paramPageNumber = "pageNumber"
)

// DecodeRequest extracts grid options from an HTTP request. Requests
// with a body (POST, PUT) carry a JSON-encoded Options document; other
// requests carry query parameters: a JSON "filters" array plus
// "sortField", "sortOrder", "pageSize" and "pageNumber".
//
// The result is untrusted data shaped for the translation engine; no
// field or operator validation happens here. Absent or non-numeric
// paging parameters mean "no paging". Malformed filter JSON is the one
// thing reported as an error, since no meaningful options can be
// recovered from it.
func DecodeRequest(r *http.Request) (*Options, error) {
	if r == nil {
		return &Options{}, nil
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		var opts Options
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			return nil, fmt.Errorf("grid: malformed options document: %w", err)
		}
		return &opts, nil
	}

	values := r.URL.Query()
	opts := &Options{}

	if raw := values.Get(paramFilters); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts.Groups); err != nil {
			return nil, fmt.Errorf("grid: malformed filters parameter: %w", err)
		}
	}

	if field, order := values.Get(paramSortField), values.Get(paramSortOrder); field != "" && order != "" {
		opts.Sort = &SortRequest{Field: field, Order: order}
	}

	size, okSize := atoi(values.Get(paramPageSize))
	number, okNumber := atoi(values.Get(paramPageNumber))
	if okSize && okNumber {
		opts.Paging = &PagingSpec{Size: &size, Number: &number}
	}

	return opts, nil
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
