package domain

// Category is the closed set of complaint classifications.
type Category string

const (
	CategorySupplierIssue  Category = "Supplier Issue"
	CategoryLogisticsIssue Category = "Logistics Issue"
	CategoryCustomerIssue  Category = "Customer Issue"
	// CategoryUnknown is reserved for classifier failures.
	CategoryUnknown Category = "Unknown"
)

// ComplaintRow is one record of an uploaded complaint batch.
type ComplaintRow struct {
	ComplaintID string `json:"complaint_id"`
	Supplier    string `json:"supplier"`
	Product     string `json:"product"`
	OrderID     string `json:"order_id"`
	Message     string `json:"message"`
}

// ClassifiedRow pairs a row with the category assigned to it.
type ClassifiedRow struct {
	Row      ComplaintRow
	Category Category
}
