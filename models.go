package axonius

import (
	"github.com/axonius-community/go-axonius/export"
	"github.com/axonius-community/go-axonius/fields"
)

// Row is a raw asset record keyed by fully-qualified field name.
type Row = export.Row

// AssetType selects which asset collection an AssetService operates on.
type AssetType string

const (
	AssetDevices AssetType = "devices"
	AssetUsers   AssetType = "users"
)

// AssetRequest defines a saved-query style asset fetch.
type AssetRequest struct {
	// Query is an AQL query string; empty matches all assets.
	Query string `json:"filter,omitempty"`

	// Fields is the list of field names to return per asset. Names may be
	// fully qualified, base names, or adapter:field shorthand.
	Fields []string `json:"fields,omitempty"`

	// HistoryDate requests results from a historical snapshot (YYYY-MM-DD).
	HistoryDate string `json:"history,omitempty"`

	// IncludeDetails asks the API to include per-entity detail fields.
	IncludeDetails bool `json:"include_details,omitempty"`
}

// PageOptions configures pagination for asset requests.
type PageOptions struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit,omitempty"`
}

// AssetPage represents a page of asset results.
type AssetPage struct {
	Assets []Row `json:"assets"`
	Total  int   `json:"total"`
	Offset int   `json:"offset"`
}

// HasMore returns true if there are more pages available.
func (p *AssetPage) HasMore() bool {
	return p.Offset+len(p.Assets) < p.Total
}

// NextOffset returns the offset for the next page.
func (p *AssetPage) NextOffset() int {
	return p.Offset + len(p.Assets)
}

// countResponse is the wire format of the count endpoint.
type countResponse struct {
	Value int `json:"value"`
}

// labelRequest is the wire format of the label add/remove endpoints.
type labelRequest struct {
	Labels []string `json:"labels"`
	IDs    []string `json:"internal_axon_ids"`
}

// labelResponse is the wire format of the label add/remove responses.
type labelResponse struct {
	Value int `json:"value"`
}

// adapterInfo is one adapter entry from the adapters endpoint.
type adapterInfo struct {
	NameRaw string `json:"name_raw"`
	Name    string `json:"name"`
	CnxOK   int    `json:"cnx_count_ok"`
}

// adaptersResponse is the wire format of the adapters endpoint.
type adaptersResponse struct {
	Adapters []adapterInfo `json:"adapters"`
}

// fieldsResponse is the wire format of the fields metadata endpoint.
type fieldsResponse = fields.Response

// getRequest is the internal request format for asset paging.
type getRequest struct {
	*AssetRequest
	PageOptions
}
