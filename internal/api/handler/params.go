package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// parseListParams reads pagination and type-filter query parameters,
// clamping the page window and rejecting unknown transaction types
func parseListParams(c *gin.Context) (ledger.PageParams, transaction.Filter, bool) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return ledger.PageParams{}, transaction.Filter{}, false
	}

	var filter transaction.Filter
	if params.Type != "" {
		t := transaction.Type(params.Type)
		if !t.Valid() {
			RespondBadRequest(c, "Unknown transaction type: "+params.Type)
			return ledger.PageParams{}, transaction.Filter{}, false
		}
		filter.Type = t
	}

	return ledger.NormalizePage(params.Page, params.Limit), filter, true
}
