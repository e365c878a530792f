package sync

import (
	"github.com/shopspring/decimal"

	"github.com/tally-bridge/backend/internal/tally"
)

// Row is one destination record with snake_case column names.
type Row = map[string]any

// amount coerces a Tally amount string to a number, falling back to zero on
// absence or parse failure. Only amount fields get this treatment, balances
// and dates travel as text.
func amount(value any) float64 {
	s, ok := value.(string)
	if !ok {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}

	return d.InexactFloat64()
}

// transform maps flattened Tally records to destination rows for one entity
// type. company is denormalized onto every row except companies themselves.
func transform(entity tally.Entity, records []tally.Record, company string) []Row {
	rows := make([]Row, 0, len(records))

	for _, r := range records {
		var row Row

		switch entity {
		case tally.EntityCompany:
			row = Row{
				"tally_guid":     r["GUID"],
				"name":           r["Name"],
				"email":          r["Email"],
				"state":          r["State"],
				"pincode":        r["Pincode"],
				"phone":          r["Phone"],
				"company_number": r["CompanyNumber"],
			}
		case tally.EntityGroup:
			row = Row{
				"tally_guid": r["GUID"],
				"name":       r["Name"],
				"parent":     r["Parent"],
				"company":    company,
			}
		case tally.EntityLedger:
			row = Row{
				"tally_guid":      r["GUID"],
				"name":            r["Name"],
				"parent":          r["Parent"],
				"opening_balance": r["OpeningBalance"],
				"closing_balance": r["ClosingBalance"],
				"company":         company,
			}
		case tally.EntityDivision:
			row = Row{
				"tally_guid": r["GUID"],
				"name":       r["Name"],
				"parent":     r["Parent"],
				"category":   r["Category"],
				"company":    company,
			}
		case tally.EntityVoucher:
			row = Row{
				"voucher_number": r["VoucherNumber"],
				"date":           r["Date"],
				"voucher_type":   r["VoucherTypeName"],
				"narration":      r["Narration"],
				"reference":      r["Reference"],
				"amount":         amount(r["Amount"]),
				"company":        company,
			}
		case tally.EntityVoucherEntry:
			row = Row{
				"voucher_number":    r["VoucherNumber"],
				"voucher_date":      r["VoucherDate"],
				"voucher_type":      r["VoucherType"],
				"ledger_name":       r["LedgerName"],
				"amount":            amount(r["Amount"]),
				"narration":         r["Narration"],
				"party_ledger_name": r["PartyLedgerName"],
				"company":           company,
			}
		}

		rows = append(rows, row)
	}

	return rows
}
