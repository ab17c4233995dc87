package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/http/response"
	"github.com/bookdueapp/bookdue-server/internal/search"
)

const maxSearchLimit = 100

// handleSearch searches the user's deadlines by title and author.
//
// Query parameters:
//
//	q       - search query (required)
//	format  - comma-separated format filter (physical, ebook, audio)
//	source  - comma-separated source filter (arc, library, personal)
//	due_before, due_after - RFC 3339 due date window
//	limit, offset - pagination (limit capped at 100)
//	sort    - relevance, title, author, due, recent
//	order   - asc, desc
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.BadRequest(w, "Missing query parameter 'q'", s.logger)
		return
	}

	params := search.DefaultSearchParams()
	params.Query = q

	query := r.URL.Query()
	if formats := query.Get("format"); formats != "" {
		params.Formats = strings.Split(formats, ",")
	}
	if sources := query.Get("source"); sources != "" {
		params.Sources = strings.Split(sources, ",")
	}

	if before := query.Get("due_before"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			response.BadRequest(w, "Invalid due_before timestamp", s.logger)
			return
		}
		params.DueBefore = t.UnixMilli()
	}
	if after := query.Get("due_after"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			response.BadRequest(w, "Invalid due_after timestamp", s.logger)
			return
		}
		params.DueAfter = t.UnixMilli()
	}

	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			response.BadRequest(w, "Invalid limit", s.logger)
			return
		}
		if n > maxSearchLimit {
			n = maxSearchLimit
		}
		params.Limit = n
	}
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid offset", s.logger)
			return
		}
		params.Offset = n
	}

	if sortBy := query.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := query.Get("order"); order != "" {
		params.SortOrder = order
	}

	result, err := s.searchService.Search(r.Context(), getUserID(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
