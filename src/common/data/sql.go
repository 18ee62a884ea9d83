package data

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func columnDefs(columns []string, sqlType string) []string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " " + sqlType
	}
	return defs
}

// placeholders returns "?, ?, ..." or "$1, $2, ..." for n parameters.
func placeholders(n int, numbered bool) string {
	ps := make([]string, n)
	for i := range ps {
		if numbered {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// createTrainDataSQL builds the traindata DDL. idColumn, if set, is prepended
// to give the table an insertion order.
func createTrainDataSQL(idColumn string) string {
	defs := columnDefs(types.TrainDataColumns, "TEXT")
	if idColumn != "" {
		defs = append([]string{idColumn}, defs...)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", TrainDataTable, strings.Join(defs, ",\n\t"))
}

func createReconciledSQL(realType string) string {
	defs := columnDefs(types.TrainDataColumns, "TEXT")
	defs = append(defs,
		quoteIdent(types.ColDateAsDate)+" TEXT",
		quoteIdent(types.ColBookedTime)+" TEXT",
		quoteIdent(types.ColRealtimeDepartureTime)+" TEXT",
		quoteIdent(types.ColTimeDifference)+" "+realType,
	)
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", ReconciledTable, strings.Join(defs, ",\n\t"))
}

func insertTrainDataSQL(numbered bool) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TrainDataTable, columnList(types.TrainDataColumns), placeholders(len(types.TrainDataColumns), numbered))
}

func insertReconciledSQL(numbered bool) string {
	columns := append(append([]string{}, types.TrainDataColumns...), types.ReconciledColumns...)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ReconciledTable, columnList(columns), placeholders(len(columns), numbered))
}

func selectTrainDataSQL(orderBy string) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", columnList(types.TrainDataColumns), TrainDataTable, orderBy)
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func trainDataArgs(r types.TrainData) []any {
	values := r.Values()
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = nullable(v)
	}
	return args
}

func reconciledArgs(r types.ReconciledTrainData) []any {
	args := trainDataArgs(r.TrainData)
	derived := r.DerivedValues()
	args = append(args, nullable(derived[0]), nullable(derived[1]), nullable(derived[2]))

	if r.TimeDifference == nil {
		args = append(args, nil)
	} else {
		args = append(args, *r.TimeDifference)
	}
	return args
}

// rowScanner is satisfied by both *sql.Rows and pgx.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTrainData(rows rowScanner) ([]types.TrainData, error) {
	records := []types.TrainData{}

	for rows.Next() {
		cells := make([]sql.NullString, len(types.TrainDataColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		var record types.TrainData
		for i, f := range record.Fields() {
			if cells[i].Valid {
				v := cells[i].String
				*f = &v
			}
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
