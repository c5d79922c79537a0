package axonius

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/axonius-community/go-axonius/fields"
	"github.com/axonius-community/go-axonius/internal/api"
)

const (
	defaultPageSize = 2000
	maxPageSize     = 4000
)

// AssetService provides operations on one Axonius asset collection
// (devices or users).
type AssetService interface {
	// Get returns an iterator over all assets matching the request.
	// The iterator fetches pages lazily as you iterate.
	Get(ctx context.Context, req *AssetRequest, opts ...RequestOption) iter.Seq2[Row, error]

	// GetPage returns a single page of assets.
	// Use this for manual pagination control.
	GetPage(ctx context.Context, req *AssetRequest, page *PageOptions, opts ...RequestOption) (*AssetPage, error)

	// Count returns the number of assets matching the query.
	Count(ctx context.Context, query string, opts ...RequestOption) (int, error)

	// Fields fetches the per-adapter field metadata and parses it into an
	// immutable schema snapshot.
	Fields(ctx context.Context, opts ...RequestOption) (*fields.Schema, error)

	// AddLabels adds the given labels to the assets with the given
	// internal_axon_ids. Returns the number of assets modified.
	AddLabels(ctx context.Context, labels []string, ids []string) (int, error)

	// RemoveLabels removes the given labels from the assets with the given
	// internal_axon_ids. Returns the number of assets modified.
	RemoveLabels(ctx context.Context, labels []string, ids []string) (int, error)

	// ListAdapterNames returns the raw names of all adapters known to the
	// instance, used by the missing-adapters report.
	ListAdapterNames(ctx context.Context, opts ...RequestOption) ([]string, error)
}

// assetService implements AssetService.
type assetService struct {
	transport *api.Transport
	assetType AssetType
}

func newAssetService(transport *api.Transport, assetType AssetType) *assetService {
	return &assetService{transport: transport, assetType: assetType}
}

// Get returns an iterator over all assets matching the request.
func (s *assetService) Get(ctx context.Context, req *AssetRequest, opts ...RequestOption) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		offset := 0
		pageSize := defaultPageSize

		for {
			page, err := s.GetPage(ctx, req, &PageOptions{
				Offset: offset,
				Limit:  pageSize,
			}, opts...)

			if err != nil {
				yield(nil, err)
				return
			}

			if !s.yieldPageRows(ctx, page, yield) {
				return
			}

			if !page.HasMore() {
				return
			}

			offset = page.NextOffset()
		}
	}
}

// yieldPageRows yields each asset row from the page to the iterator.
// Returns false if iteration should stop (context cancelled or yield returned false).
func (s *assetService) yieldPageRows(ctx context.Context, page *AssetPage, yield func(Row, error) bool) bool {
	for _, row := range page.Assets {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return false
		}
		if !yield(row, nil) {
			return false
		}
	}
	return true
}

// GetPage returns a single page of assets.
func (s *assetService) GetPage(ctx context.Context, req *AssetRequest, page *PageOptions, opts ...RequestOption) (*AssetPage, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	if req == nil {
		req = &AssetRequest{}
	}
	if page == nil {
		page = &PageOptions{}
	}
	if page.Limit <= 0 {
		page.Limit = defaultPageSize
	}
	if page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}

	body := &getRequest{
		AssetRequest: req,
		PageOptions:  *page,
	}

	var result AssetPage
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("/api/%s", s.assetType),
		Body:    body,
		Headers: reqCfg.headers,
	}, &result)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return &result, nil
}

// Count returns the number of assets matching the query.
func (s *assetService) Count(ctx context.Context, query string, opts ...RequestOption) (int, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	body := map[string]any{}
	if query != "" {
		body["filter"] = query
	}

	var result countResponse
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("/api/%s/count", s.assetType),
		Body:    body,
		Headers: reqCfg.headers,
	}, &result)

	if err != nil {
		return 0, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return result.Value, nil
}

// Fields fetches and parses the per-adapter field metadata.
func (s *assetService) Fields(ctx context.Context, opts ...RequestOption) (*fields.Schema, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result fieldsResponse
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/api/%s/fields", s.assetType),
		Headers: reqCfg.headers,
	}, &result)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return fields.Parse(result)
}

// AddLabels adds labels to assets in one bulk call.
func (s *assetService) AddLabels(ctx context.Context, labels []string, ids []string) (int, error) {
	return s.mutateLabels(ctx, fmt.Sprintf("/api/%s/labels", s.assetType), labels, ids)
}

// RemoveLabels removes labels from assets in one bulk call.
func (s *assetService) RemoveLabels(ctx context.Context, labels []string, ids []string) (int, error) {
	return s.mutateLabels(ctx, fmt.Sprintf("/api/%s/labels/remove", s.assetType), labels, ids)
}

func (s *assetService) mutateLabels(ctx context.Context, path string, labels []string, ids []string) (int, error) {
	if len(labels) == 0 {
		return 0, &ValidationError{
			APIError: APIError{Message: "labels cannot be empty"},
			Fields:   map[string]string{"labels": "at least one label is required"},
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var result labelResponse
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   &labelRequest{Labels: labels, IDs: ids},
	}, &result)

	if err != nil {
		return 0, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return result.Value, nil
}

// ListAdapterNames returns the raw names of all adapters on the instance.
func (s *assetService) ListAdapterNames(ctx context.Context, opts ...RequestOption) ([]string, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result adaptersResponse
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/api/adapters",
		Headers: reqCfg.headers,
	}, &result)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	names := make([]string, 0, len(result.Adapters))
	for _, adapter := range result.Adapters {
		names = append(names, adapter.NameRaw)
	}
	return names, nil
}
