package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBatchValidate(t *testing.T) {
	base := ProductBatch{
		ID:             "b1",
		ProductID:      "p1",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		InitialQty:     10,
		Quantity:       10,
	}
	require.NoError(t, base.Validate())

	over := base
	over.Quantity = 11
	require.ErrorIs(t, over.Validate(), ErrBatchQuantityRange)

	negative := base
	negative.Quantity = -1
	require.ErrorIs(t, negative.Validate(), ErrBatchQuantityRange)

	missing := base
	missing.ProductID = ""
	require.Error(t, missing.Validate())
}

func TestBelowMinStock(t *testing.T) {
	p := Product{Stock: 4, MinStock: 5}
	require.True(t, p.BelowMinStock())
	p.Stock = 5
	require.False(t, p.BelowMinStock())
}
