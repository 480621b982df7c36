package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "logistix/internal/core/context"
)

type captureRecorder struct {
	entries []Entry
	err     error
}

func (c *captureRecorder) Record(_ context.Context, e Entry) error {
	c.entries = append(c.entries, e)
	return c.err
}

func TestRecord_FillsActorAndTime(t *testing.T) {
	rec := &captureRecorder{}
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u1"})

	Record(ctx, rec, Entry{TenantID: "t1", EntityType: "invoice", EntityID: "i1", Action: ActionInvoiceVoided})

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "u1", rec.entries[0].ActorID)
	assert.False(t, rec.entries[0].CreatedAt.IsZero())
}

func TestRecord_SwallowsErrors(t *testing.T) {
	rec := &captureRecorder{err: errors.New("disk full")}

	assert.NotPanics(t, func() {
		Record(context.Background(), rec, Entry{Action: ActionCounterSet})
		Record(context.Background(), nil, Entry{Action: ActionCounterSet})
	})
	assert.Len(t, rec.entries, 1)
}
