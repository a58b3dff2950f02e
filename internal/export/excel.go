package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"orderflow/domain"
)

// SheetName имя листа в выгружаемой книге
const SheetName = "Orders"

// EncodeXLSX собирает книгу Excel с одним листом заказов
func EncodeXLSX(orders []domain.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, col := range Header {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		// пишем те же строковые значения, что и в CSV, чтобы обе выгрузки
		// были взаимозаменяемы при импорте
		record := Record(o)
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
		}
		if err = f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write xlsx record: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeXLSX читает заказы с первого листа книги,
// заголовок должен совпадать с Header один в один
func DecodeXLSX(r io.Reader) ([]domain.Order, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrHeaderMismatch
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	if len(rows) == 0 || !headerEqual(pad(rows[0])) {
		return nil, ErrHeaderMismatch
	}

	var orders []domain.Order
	for _, record := range rows[1:] {
		o, err := ParseRecord(pad(record))
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// pad дополняет строку пустыми ячейками до полной ширины таблицы,
// excelize отбрасывает пустые ячейки в хвосте строки
func pad(record []string) []string {
	for len(record) < len(Header) {
		record = append(record, "")
	}
	return record
}
