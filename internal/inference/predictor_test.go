package inference

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
	"github.com/harperclay/rfmflow/internal/scale"
)

// identityScaler leaves feature vectors unchanged so centroids can be
// written directly in RFM units.
func identityScaler() *scale.StandardScaler {
	return &scale.StandardScaler{
		Mean: []float64{0, 0, 0},
		Std:  []float64{1, 1, 1},
	}
}

// testModel has centroids shaped like the production segments: index 1 is
// dormant (high recency, low everything else), index 2 is the low-recency
// high-frequency high-monetary cluster.
func testModel() *cluster.Model {
	return &cluster.Model{
		K: 3,
		Centroids: [][]float64{
			{44, 4, 1300},
			{250, 1, 480},
			{10, 45, 26000},
		},
	}
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(identityScaler(), testModel(), model.DefaultCatalog(), cleaning.DefaultPolicy(), "run-test")
	require.NoError(t, err)
	return ctx
}

func TestNewContext_RequiresFittedState(t *testing.T) {
	_, err := NewContext(nil, testModel(), nil, cleaning.DefaultPolicy(), "")
	assert.ErrorIs(t, err, common.ErrNotFitted)

	_, err = NewContext(identityScaler(), nil, nil, cleaning.DefaultPolicy(), "")
	assert.ErrorIs(t, err, common.ErrNotFitted)

	_, err = NewContext(identityScaler(), &cluster.Model{}, nil, cleaning.DefaultPolicy(), "")
	assert.ErrorIs(t, err, common.ErrNotFitted)
}

func TestPredictRFM_ValidationErrors(t *testing.T) {
	ctx := newTestContext(t)

	tests := []struct {
		name      string
		record    model.RFMRecord
		wantField string
	}{
		{"negative recency", model.RFMRecord{Recency: -1, Frequency: 5, Monetary: 100}, "recency"},
		{"zero frequency", model.RFMRecord{Recency: 10, Frequency: 0, Monetary: 100}, "frequency"},
		{"zero monetary", model.RFMRecord{Recency: 10, Frequency: 5, Monetary: 0}, "monetary"},
		{"negative monetary", model.RFMRecord{Recency: 10, Frequency: 5, Monetary: -50}, "monetary"},
		{"recency above bound", model.RFMRecord{Recency: 400, Frequency: 5, Monetary: 100}, "recency"},
		{"frequency above bound", model.RFMRecord{Recency: 10, Frequency: 500, Monetary: 100}, "frequency"},
		{"monetary above bound", model.RFMRecord{Recency: 10, Frequency: 5, Monetary: 400000}, "monetary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctx.PredictRFM(tt.record)

			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestPredictRFM_LoyalHighValueProfile(t *testing.T) {
	ctx := newTestContext(t)

	// Low recency, high frequency, high monetary lands in the centroid
	// with that shape.
	result, err := ctx.PredictRFM(model.RFMRecord{Recency: 5, Frequency: 50, Monetary: 25000})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Cluster)
	assert.Equal(t, "Loyal High-Value", result.Segment.Name)
}

func TestPredictRFM_Idempotent(t *testing.T) {
	ctx := newTestContext(t)
	record := model.RFMRecord{Recency: 45, Frequency: 2, Monetary: 1200}

	first, err := ctx.PredictRFM(record)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ctx.PredictRFM(record)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPredictTransactions_SingleCustomer(t *testing.T) {
	ctx := newTestContext(t)
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	last := ref.AddDate(0, 0, -45)

	txns := []model.Transaction{
		{CustomerID: "12583", InvoiceID: "540100", InvoiceDate: last.AddDate(0, 0, -10),
			Quantity: 10, UnitPrice: decimal.RequireFromString("50.00")},
		{CustomerID: "12583", InvoiceID: "540200", InvoiceDate: last,
			Quantity: 35, UnitPrice: decimal.RequireFromString("20.00")},
		// Rows the cleaner must drop before aggregation.
		{CustomerID: "12583", InvoiceID: "C540300", InvoiceDate: last,
			Quantity: -5, UnitPrice: decimal.RequireFromString("20.00")},
		{CustomerID: "12583", InvoiceID: "540400", InvoiceDate: last,
			Quantity: 0, UnitPrice: decimal.RequireFromString("9.99")},
	}

	result, err := ctx.PredictTransactions(txns, ref)
	require.NoError(t, err)

	assert.Equal(t, model.RFMRecord{
		CustomerID: "12583",
		Recency:    45,
		Frequency:  2,
		Monetary:   1200,
	}, result.RFM)

	// Nearest centroid under Euclidean distance is the regular-customer
	// one at (44, 4, 1300).
	assert.Equal(t, 0, result.Cluster)
}

func TestPredictTransactions_DormantCustomerKeepsStaleRecency(t *testing.T) {
	ctx := newTestContext(t)
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Single purchase 300 days before the reference date. Recency must
	// reflect the full gap, not reset to 1 off the customer's own last
	// invoice.
	txns := []model.Transaction{
		{CustomerID: "17850", InvoiceID: "536365", InvoiceDate: ref.AddDate(0, 0, -300),
			Quantity: 6, UnitPrice: decimal.RequireFromString("80.00")},
	}

	result, err := ctx.PredictTransactions(txns, ref)
	require.NoError(t, err)

	assert.Equal(t, 300, result.RFM.Recency)
	assert.Equal(t, 1, result.Cluster)
	assert.Equal(t, "Dormant / At Risk", result.Segment.Name)
}

func TestPredictTransactions_ZeroRefMeansNow(t *testing.T) {
	ctx := newTestContext(t)

	txns := []model.Transaction{
		{CustomerID: "17850", InvoiceID: "536365",
			InvoiceDate: time.Now().UTC().AddDate(0, 0, -120),
			Quantity:    6, UnitPrice: decimal.RequireFromString("80.00")},
	}

	result, err := ctx.PredictTransactions(txns, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 120, result.RFM.Recency)
}

func TestPredictTransactions_Rejections(t *testing.T) {
	ctx := newTestContext(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{"no transactions", nil},
		{
			"nothing survives cleaning",
			[]model.Transaction{
				{CustomerID: "1", InvoiceID: "C100", InvoiceDate: date,
					Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
			},
		},
		{
			"multiple customers",
			[]model.Transaction{
				{CustomerID: "1", InvoiceID: "100", InvoiceDate: date,
					Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
				{CustomerID: "2", InvoiceID: "101", InvoiceDate: date,
					Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctx.PredictTransactions(tt.txns, time.Time{})

			var ve *common.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestSwapper_AtomicReload(t *testing.T) {
	first := newTestContext(t)
	swapper := NewSwapper(first)
	assert.Same(t, first, swapper.Load())

	second, err := NewContext(identityScaler(), testModel(), model.DefaultCatalog(), cleaning.DefaultPolicy(), "run-2")
	require.NoError(t, err)

	swapper.Swap(second)
	assert.Same(t, second, swapper.Load())
	assert.Equal(t, "run-2", swapper.Load().RunID())
}

func TestSwapper_StartsEmpty(t *testing.T) {
	swapper := NewSwapper(nil)
	assert.Nil(t, swapper.Load())
}
