package remote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"
)

// dayRecordRow is one row of the month calendar view, as the API sends it.
type dayRecordRow struct {
	Date         string           `json:"date"`
	VersionID    string           `json:"version_id"`
	TxnGoal      *int64           `json:"txn_goal"`
	TxnActual    *int64           `json:"txn_actual"`
	SalesGoal    *decimal.Decimal `json:"sales_goal"`
	SalesActual  *decimal.Decimal `json:"sales_actual"`
	ATVGoal      *decimal.Decimal `json:"atv_goal"`
	MarginActual *decimal.Decimal `json:"margin_actual"`
}

func (r dayRecordRow) toModel() (model.DayRecord, error) {
	d, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return model.DayRecord{}, fmt.Errorf("remote: bad date %q: %w", r.Date, err)
	}
	return model.DayRecord{
		Date:         d,
		VersionID:    r.VersionID,
		TxnGoal:      r.TxnGoal,
		TxnActual:    r.TxnActual,
		SalesGoal:    r.SalesGoal,
		SalesActual:  r.SalesActual,
		ATVGoal:      r.ATVGoal,
		MarginActual: r.MarginActual,
	}, nil
}

// actualsRow is the read-back shape of a recorded day.
type actualsRow struct {
	Transactions *int64           `json:"transactions"`
	NetSales     *decimal.Decimal `json:"net_sales"`
	GrossMargin  *decimal.Decimal `json:"gross_margin"`
}

func (r actualsRow) toModel() model.DayActuals {
	return model.DayActuals{
		Transactions: r.Transactions,
		NetSales:     r.NetSales,
		GrossMargin:  r.GrossMargin,
	}
}

type locationRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// upsertRequest is the edge-function write payload.
type upsertRequest struct {
	LocationID string      `json:"locationId"`
	Rows       []upsertRow `json:"rows"`
}

type upsertRow struct {
	Date         string           `json:"date"`
	Transactions *int64           `json:"transactions"`
	NetSales     *decimal.Decimal `json:"net_sales"`
	GrossMargin  *decimal.Decimal `json:"gross_margin"`
}
