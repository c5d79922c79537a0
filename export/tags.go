package export

import (
	"context"
	"fmt"
)

// doTagging flushes the accumulated label mutations in at most two bulk
// calls, one per direction. Pending identities are cleared on success so a
// second Stop never re-tags.
func (p *pipeline) doTagging(ctx context.Context) error {
	if p.cfg.Labeler == nil {
		return nil
	}

	if ids := p.st.tagAdd.values(); len(ids) > 0 {
		n, err := p.cfg.Labeler.AddLabels(ctx, p.opts.TagsAdd, ids)
		if err != nil {
			return fmt.Errorf("add labels %v: %w", p.opts.TagsAdd, err)
		}
		p.st.tagsAdded += n
		p.st.tagAdd.clear()
		p.echof("added labels %v to %d assets", p.opts.TagsAdd, n)
	}

	if ids := p.st.tagRemove.values(); len(ids) > 0 {
		n, err := p.cfg.Labeler.RemoveLabels(ctx, p.opts.TagsRemove, ids)
		if err != nil {
			return fmt.Errorf("remove labels %v: %w", p.opts.TagsRemove, err)
		}
		p.st.tagsRemoved += n
		p.st.tagRemove.clear()
		p.echof("removed labels %v from %d assets", p.opts.TagsRemove, n)
	}

	return nil
}
