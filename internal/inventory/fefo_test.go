package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/catalog"
)

func batch(id, lot string, exp, recv time.Time, qty int64) catalog.ProductBatch {
	return catalog.ProductBatch{
		ID:             id,
		ProductID:      "p1",
		LotNumber:      lot,
		ExpirationDate: exp,
		ReceivedDate:   recv,
		Quantity:       qty,
		InitialQty:     qty,
	}
}

func TestPlanAllocationDepletesEarliestExpiryFirst(t *testing.T) {
	recv := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	batches := []catalog.ProductBatch{
		batch("b2", "LOT-B", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), recv, 10),
		batch("b1", "LOT-A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recv, 5),
	}

	plan, err := PlanAllocation("p1", "Paracetamol", batches, 8)
	require.NoError(t, err)
	require.Equal(t, []BatchAllocation{
		{BatchID: "b1", LotNumber: "LOT-A", Quantity: 5},
		{BatchID: "b2", LotNumber: "LOT-B", Quantity: 3},
	}, plan)
}

func TestPlanAllocationTieBreaksAreDeterministic(t *testing.T) {
	exp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	batches := []catalog.ProductBatch{
		batch("b3", "LOT-C", exp, late, 4),
		batch("b2", "LOT-B", exp, early, 4),
		batch("b1", "LOT-A", exp, early, 4),
	}

	// Same expiration: received date wins, then id.
	plan, err := PlanAllocation("p1", "Amoxicillin", batches, 10)
	require.NoError(t, err)
	require.Equal(t, []BatchAllocation{
		{BatchID: "b1", LotNumber: "LOT-A", Quantity: 4},
		{BatchID: "b2", LotNumber: "LOT-B", Quantity: 4},
		{BatchID: "b3", LotNumber: "LOT-C", Quantity: 2},
	}, plan)
}

func TestPlanAllocationShortfallFailsWholePlan(t *testing.T) {
	recv := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	batches := []catalog.ProductBatch{
		batch("b1", "LOT-A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recv, 5),
		batch("b2", "LOT-B", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), recv, 10),
	}

	plan, err := PlanAllocation("p1", "Ibuprofen", batches, 20)
	require.Nil(t, plan)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var detail *InsufficientStockError
	require.ErrorAs(t, err, &detail)
	require.Equal(t, int64(15), detail.Available)
	require.Equal(t, int64(20), detail.Requested)
}

func TestPlanAllocationSkipsEmptyBatches(t *testing.T) {
	recv := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	batches := []catalog.ProductBatch{
		batch("b1", "LOT-A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recv, 0),
		batch("b2", "LOT-B", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), recv, 6),
	}

	plan, err := PlanAllocation("p1", "Cetirizine", batches, 6)
	require.NoError(t, err)
	require.Equal(t, []BatchAllocation{{BatchID: "b2", LotNumber: "LOT-B", Quantity: 6}}, plan)
}

func TestPlanAllocationRejectsNonPositiveRequest(t *testing.T) {
	_, err := PlanAllocation("p1", "Aspirin", nil, 0)
	require.Error(t, err)
	_, err = PlanAllocation("p1", "Aspirin", nil, -3)
	require.Error(t, err)
}
