package util

import (
	"fmt"
	"net/http"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// SetPaginationHeaders writes X-Total-Count plus RFC 8288 Link headers for
// next/prev pages onto the response.
func SetPaginationHeaders(r *http.Request, setHeader func(key, value string), p models.Pagination) {
	setHeader("X-Total-Count", fmt.Sprintf("%d", p.TotalRecords))
	setHeader("X-Total-Pages", fmt.Sprintf("%d", p.TotalPages))

	link := ""
	if p.Next != nil {
		link += fmt.Sprintf(`<%s?page=%d&perPage=%d>; rel="next"`, r.URL.Path, *p.Next, p.RecordsPerPage)
	}
	if p.Previous != nil {
		if link != "" {
			link += ", "
		}
		link += fmt.Sprintf(`<%s?page=%d&perPage=%d>; rel="prev"`, r.URL.Path, *p.Previous, p.RecordsPerPage)
	}
	if link != "" {
		setHeader("Link", link)
	}
}
