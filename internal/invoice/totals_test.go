package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

func TestReviewDraft_AddedItemIDDistinctFromSynthesized(t *testing.T) {
	// Extraction synthesizes "item-<idx>-<nanos>" ids; a draft-added item must
	// never land in that namespace within the same record.
	data := &entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{{Total: entity.Float(10)}, {Total: entity.Float(20)}},
	}
	EnsureLineItemIDs(data)

	draft := NewReviewDraft(data)
	id := draft.AddLineItem()

	assert.True(t, strings.HasPrefix(id, "item-new-"))
	for _, item := range data.LineItems {
		assert.NotEqual(t, item.ID, id)
	}
}

func TestRecalculateTotals(t *testing.T) {
	items := []entity.LineItem{
		{ID: "li-1", Quantity: entity.Float(2), UnitPrice: entity.Float(50)},
		{ID: "li-2", Total: entity.Float(25)},
	}

	sub, total := RecalculateTotals(items, entity.Float(7.5))

	assert.Equal(t, 125.00, sub)
	assert.Equal(t, 132.50, total)
}

func TestRecalculateTotals_NilTaxIsZero(t *testing.T) {
	items := []entity.LineItem{
		{ID: "li-1", Total: entity.Float(99.99)},
	}

	sub, total := RecalculateTotals(items, nil)

	assert.Equal(t, 99.99, sub)
	assert.Equal(t, 99.99, total)
}

func TestRecalculateTotals_SkipsUnpricedItems(t *testing.T) {
	items := []entity.LineItem{
		{ID: "li-1", Quantity: entity.Float(3)}, // no unit price, no total
		{ID: "li-2", Total: entity.Float(40)},
	}

	sub, total := RecalculateTotals(items, nil)

	assert.Equal(t, 40.00, sub)
	assert.Equal(t, 40.00, total)
}

func TestRecalculateTotals_RoundsToTwoDecimals(t *testing.T) {
	items := []entity.LineItem{
		{ID: "li-1", Quantity: entity.Float(3), UnitPrice: entity.Float(0.333)},
	}

	sub, total := RecalculateTotals(items, entity.Float(0.005))

	assert.Equal(t, 1.00, sub)
	assert.Equal(t, 1.00, total)
}

func TestRecalculateTotals_Empty(t *testing.T) {
	sub, total := RecalculateTotals(nil, nil)

	assert.Equal(t, 0.00, sub)
	assert.Equal(t, 0.00, total)
}

func TestReviewDraft_DoesNotMutateOriginal(t *testing.T) {
	original := &entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Quantity: entity.Float(1), UnitPrice: entity.Float(10), Total: entity.Float(10)},
		},
		SubTotal:    entity.Float(10),
		TotalAmount: entity.Float(10),
	}

	draft := NewReviewDraft(original)
	require.NoError(t, draft.SetLineItemQuantity(0, entity.Float(5)))

	assert.Equal(t, 1.0, *original.LineItems[0].Quantity)
	assert.Equal(t, 10.0, *original.SubTotal)
}

func TestReviewDraft_CreationKeepsStatedTotals(t *testing.T) {
	// Opening a review session must not silently repair a mismatch; only
	// explicit edits recompute.
	original := &entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Total: entity.Float(250)},
		},
		SubTotal:    entity.Float(240),
		TotalAmount: entity.Float(240),
	}

	data := NewReviewDraft(original).Data()

	assert.Equal(t, 240.0, *data.SubTotal)
	assert.Equal(t, 240.0, *data.TotalAmount)
}

func TestReviewDraft_QuantityEditRecomputesItemAndTotals(t *testing.T) {
	draft := NewReviewDraft(&entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Quantity: entity.Float(2), UnitPrice: entity.Float(50), Total: entity.Float(100)},
		},
		TaxAmount: entity.Float(7.5),
	})

	require.NoError(t, draft.SetLineItemQuantity(0, entity.Float(3)))

	data := draft.Data()
	assert.Equal(t, 150.0, *data.LineItems[0].Total)
	assert.Equal(t, 150.0, *data.SubTotal)
	assert.Equal(t, 157.5, *data.TotalAmount)
}

func TestReviewDraft_UnitPriceEditWithoutQuantityKeepsTotal(t *testing.T) {
	draft := NewReviewDraft(&entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Total: entity.Float(80)},
		},
	})

	require.NoError(t, draft.SetLineItemUnitPrice(0, entity.Float(40)))

	data := draft.Data()
	assert.Equal(t, 80.0, *data.LineItems[0].Total, "total stays when quantity is unknown")
	assert.Equal(t, 80.0, *data.SubTotal)
}

func TestReviewDraft_TaxEditRecomputesOverallTotal(t *testing.T) {
	draft := NewReviewDraft(&entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Total: entity.Float(100)},
		},
	})

	draft.SetTaxAmount(entity.Float(12.34))

	data := draft.Data()
	assert.Equal(t, 100.0, *data.SubTotal)
	assert.Equal(t, 112.34, *data.TotalAmount)
}

func TestReviewDraft_AddAndRemoveLineItems(t *testing.T) {
	draft := NewReviewDraft(&entity.ExtractedInvoiceData{
		LineItems: []entity.LineItem{
			{ID: "li-1", Total: entity.Float(60)},
		},
	})

	id := draft.AddLineItem()
	require.NotEmpty(t, id)
	require.NoError(t, draft.SetLineItemTotal(1, entity.Float(40)))

	data := draft.Data()
	require.Len(t, data.LineItems, 2)
	assert.Equal(t, 100.0, *data.SubTotal)

	require.NoError(t, draft.RemoveLineItem(0))
	data = draft.Data()
	require.Len(t, data.LineItems, 1)
	assert.Equal(t, 40.0, *data.SubTotal)
}

func TestReviewDraft_IndexOutOfRange(t *testing.T) {
	draft := NewReviewDraft(nil)

	assert.ErrorIs(t, draft.SetLineItemQuantity(0, entity.Float(1)), ErrLineItemOutOfRange)
	assert.ErrorIs(t, draft.RemoveLineItem(-1), ErrLineItemOutOfRange)
}
