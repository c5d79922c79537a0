package axonius

import (
	"context"
	"errors"

	"github.com/axonius-community/go-axonius/export"
)

// Export pages assets through an export pipeline: Start, push every page's
// rows, Stop. A StopFetchError raised by the pipeline (row cap reached) stops
// paging cooperatively; output already written stays valid and Stop still
// runs so the sink is closed and its footer written.
func Export(ctx context.Context, svc AssetService, req *AssetRequest, p export.Pipeline) (export.StateView, error) {
	if err := p.Start(ctx); err != nil {
		return p.StateView(), err
	}

	runErr := exportPages(ctx, svc, req, p)

	// Stop must run even when paging or row processing failed, so the
	// file descriptor is released and pending tags are flushed.
	stopErr := p.Stop(ctx)

	if runErr != nil {
		return p.StateView(), runErr
	}
	return p.StateView(), stopErr
}

func exportPages(ctx context.Context, svc AssetService, req *AssetRequest, p export.Pipeline) error {
	offset := 0
	for {
		page, err := svc.GetPage(ctx, req, &PageOptions{Offset: offset, Limit: defaultPageSize})
		if err != nil {
			return err
		}
		p.SetRowsToFetch(page.Total)

		if _, err := p.ProcessRows(ctx, page.Assets...); err != nil {
			var stop *export.StopFetchError
			if errors.As(err, &stop) {
				return nil
			}
			return err
		}

		if !page.HasMore() {
			return nil
		}
		offset = page.NextOffset()
	}
}
