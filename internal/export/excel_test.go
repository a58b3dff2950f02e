package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXRoundTrip(t *testing.T) {
	orders := sampleOrders()

	data, err := EncodeXLSX(orders)
	require.NoError(t, err)

	decoded, err := DecodeXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, orders, decoded)
}

func TestEncodeXLSXSheetName(t *testing.T) {
	data, err := EncodeXLSX(sampleOrders())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
}

func TestDecodeXLSXHeaderMismatch(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Phone"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = DecodeXLSX(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestDecodeXLSXEmptyTable(t *testing.T) {
	data, err := EncodeXLSX(nil)
	require.NoError(t, err)

	decoded, err := DecodeXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
