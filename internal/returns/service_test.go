package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

func orderLines() []store.OrderItem {
	return []store.OrderItem{
		{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Title: "áo thun", Qty: 3, UnitPrice: 120_000},
		{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002"), Title: "quần jean", Qty: 1, UnitPrice: 350_000},
	}
}

func TestBuildLinesRefundSumsLineValues(t *testing.T) {
	items := orderLines()
	lines, refund, err := buildLines(items, []LineInput{
		{OrderItemID: items[0].ID, Qty: 2},
		{OrderItemID: items[1].ID, Qty: 1},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, int64(2*120_000+350_000), refund)
	require.Equal(t, items[0].UnitPrice, lines[0].UnitPrice)
}

func TestBuildLinesRejectsOverOriginalQty(t *testing.T) {
	items := orderLines()
	_, _, err := buildLines(items, []LineInput{{OrderItemID: items[1].ID, Qty: 2}})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestBuildLinesAllowsFullOriginalQty(t *testing.T) {
	items := orderLines()
	_, refund, err := buildLines(items, []LineInput{{OrderItemID: items[0].ID, Qty: 3}})
	require.NoError(t, err)
	require.Equal(t, int64(360_000), refund)
}

func TestBuildLinesRejectsUnknownAndDuplicateLines(t *testing.T) {
	items := orderLines()
	_, _, err := buildLines(items, []LineInput{{OrderItemID: uuid.New(), Qty: 1}})
	require.Error(t, err)

	_, _, err = buildLines(items, []LineInput{
		{OrderItemID: items[0].ID, Qty: 1},
		{OrderItemID: items[0].ID, Qty: 1},
	})
	require.Error(t, err)
}
