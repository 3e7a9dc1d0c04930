package domain

// Dataset column labels. These are matched exactly against the header row.
const (
	ColumnSupplier       = "SUPPLIER"
	ColumnWarehouseSales = "WAREHOUSE SALES"
	ColumnRetailSales    = "RETAIL SALES"
)

type SupplierSummary struct {
	Supplier       string  `json:"supplier"`
	WarehouseSales float64 `json:"warehouse_sales"`
	RetailSales    float64 `json:"retail_sales"`
}

// WindowSize is the number of summaries to display. WindowAll selects every
// summary regardless of length.
type WindowSize int

const WindowAll WindowSize = -1

// DefaultWindow matches the initial selection of the sales view.
const DefaultWindow WindowSize = 20

var RecognizedWindows = []WindowSize{10, 20, 50, 100, WindowAll}
