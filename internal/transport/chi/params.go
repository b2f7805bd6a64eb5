package chi

import (
	"fmt"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Detail levels for listings.
const (
	detailsMin = "min"
	detailsAll = "all"
)

// listParams are the query parameters shared by paginated listings.
type listParams struct {
	Page    *int
	PerPage *int
	Details *string
}

// searchParams are the query parameters of GET /search.
type searchParams struct {
	listParams
	Query     *string
	SortField *string
	Reverse   *bool
}

// paramError reports a parameter that could not be bound.
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

func pathID(r *http.Request, name string) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, &paramError{name: name, err: err}
	}
	return id, nil
}

func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return &paramError{name: name, err: err}
	}
	return nil
}

func bindListParams(r *http.Request) (listParams, error) {
	var p listParams
	if err := bindQuery(r, "page", &p.Page); err != nil {
		return p, err
	}
	if err := bindQuery(r, "per_page", &p.PerPage); err != nil {
		return p, err
	}
	if err := bindQuery(r, "details", &p.Details); err != nil {
		return p, err
	}
	return p, nil
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	var err error
	if p.listParams, err = bindListParams(r); err != nil {
		return p, err
	}
	if err = bindQuery(r, "query", &p.Query); err != nil {
		return p, err
	}
	if err = bindQuery(r, "sort_field", &p.SortField); err != nil {
		return p, err
	}
	if err = bindQuery(r, "reverse", &p.Reverse); err != nil {
		return p, err
	}
	return p, nil
}

// allDetails reports whether the full representation was requested.
func (p listParams) allDetails() bool {
	return p.Details != nil && strings.EqualFold(*p.Details, detailsAll)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
