package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/aroundegypt/internal/aroundegypt"
	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/entities"
)

// ErrorInfo is the JSON form of the catalog error slot.
type ErrorInfo struct {
	Kind    catalog.Kind `json:"kind"`
	Op      string       `json:"op,omitempty"`
	Message string       `json:"message"`
}

func newErrorInfo(err *catalog.Error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Kind: err.Kind, Op: err.Op, Message: err.Kind.Message()}
}

// ListResponse is returned by the list endpoints.
type ListResponse struct {
	Items     []catalog.Experience `json:"items"`
	Loading   bool                 `json:"loading"`
	Connected bool                 `json:"connected"`
	Error     *ErrorInfo           `json:"error,omitempty"`
}

// ItemResponse is returned by the single-experience endpoints.
type ItemResponse struct {
	Item      *catalog.Experience `json:"item,omitempty"`
	Connected bool                `json:"connected"`
	Error     *ErrorInfo          `json:"error,omitempty"`
}

// StateResponse is the whole orchestrator state.
type StateResponse struct {
	catalog.State
	Connected bool       `json:"connected"`
	Error     *ErrorInfo `json:"error,omitempty"`
}

type CatalogController struct {
	catalog Catalog
	oracle  connectivity.Oracle
}

func NewCatalogController(c Catalog, oracle connectivity.Oracle) *CatalogController {
	return &CatalogController{catalog: c, oracle: oracle}
}

// Recent handles GET /api/experiences
func (cc *CatalogController) Recent(c *gin.Context) {
	cc.catalog.LoadRecent(c.Request.Context())
	state := cc.catalog.Snapshot()
	cc.respondList(c, catalog.OpLoadRecent, state.Experiences, state)
}

// Recommended handles GET /api/experiences/recommended
func (cc *CatalogController) Recommended(c *gin.Context) {
	cc.catalog.LoadRecommended(c.Request.Context())
	state := cc.catalog.Snapshot()
	cc.respondList(c, catalog.OpLoadRecommended, state.Recommended, state)
}

// Search handles GET /api/experiences/search?q=
func (cc *CatalogController) Search(c *gin.Context) {
	query, ok := requireQuery(c, "q")
	if !ok {
		return
	}
	cc.catalog.Search(c.Request.Context(), query)
	state := cc.catalog.Snapshot()
	cc.respondList(c, catalog.OpSearch, state.SearchResults, state)
}

// ExitSearch handles DELETE /api/experiences/search
func (cc *CatalogController) ExitSearch(c *gin.Context) {
	cc.catalog.ExitSearch()
	c.Status(http.StatusNoContent)
}

// Details handles GET /api/experiences/:id
func (cc *CatalogController) Details(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	item, found := cc.catalog.FetchDetails(c.Request.Context(), id)
	if !found {
		err := cc.catalog.Err()
		c.JSON(detailsStatus(err), ItemResponse{
			Connected: cc.oracle.IsConnected(),
			Error:     newErrorInfo(err),
		})
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: &item, Connected: cc.oracle.IsConnected()})
}

// Like handles POST /api/experiences/:id/like
// The experience is taken from memory when loaded; otherwise only its id
// is known and the liked set decides whether the like is sent.
func (cc *CatalogController) Like(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	target, known := cc.catalog.Find(id)
	if !known {
		target = catalog.Experience{Experience: entities.Experience{ID: id}}
	}

	before := cc.catalog.Err()
	cc.catalog.Like(c.Request.Context(), target)
	if after := cc.catalog.Err(); after != nil && after != before && after.Op == catalog.OpLike {
		c.JSON(http.StatusBadGateway, ItemResponse{
			Connected: cc.oracle.IsConnected(),
			Error:     newErrorInfo(after),
		})
		return
	}

	resp := ItemResponse{Connected: cc.oracle.IsConnected()}
	if item, ok := cc.catalog.Find(id); ok {
		resp.Item = &item
	}
	c.JSON(http.StatusOK, resp)
}

// State handles GET /api/state
func (cc *CatalogController) State(c *gin.Context) {
	state := cc.catalog.Snapshot()
	c.JSON(http.StatusOK, StateResponse{
		State:     state,
		Connected: cc.oracle.IsConnected(),
		Error:     newErrorInfo(state.Error),
	})
}

// ClearError handles DELETE /api/state/error
func (cc *CatalogController) ClearError(c *gin.Context) {
	cc.catalog.ClearError()
	c.Status(http.StatusNoContent)
}

// respondList reports the error slot only when it was set by op.
func (cc *CatalogController) respondList(c *gin.Context, op string, items []catalog.Experience, state catalog.State) {
	if items == nil {
		items = []catalog.Experience{}
	}
	resp := ListResponse{
		Items:     items,
		Loading:   state.Loading,
		Connected: cc.oracle.IsConnected(),
	}
	if state.Error != nil && state.Error.Op == op {
		resp.Error = newErrorInfo(state.Error)
	}
	c.JSON(http.StatusOK, resp)
}

func detailsStatus(err *catalog.Error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case err.Kind == catalog.KindNoCache, errors.Is(err, aroundegypt.ErrNotFound):
		return http.StatusNotFound
	case err.Kind == catalog.KindDetails:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
