package intake

import (
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

func TestFromCSV(t *testing.T) {
	input := "\ufeffComplaint_ID,Supplier,Product,Message\n" +
		"C1,Acme,Shoe,Wrong color received\n" +
		"C2,Acme,Shoe,\"Arrived late, box open\"\n"

	rows, err := FromCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromCSV error: %v", err)
	}
	want := []domain.ComplaintRow{
		{ComplaintID: "C1", Supplier: "Acme", Product: "Shoe", Message: "Wrong color received"},
		{ComplaintID: "C2", Supplier: "Acme", Product: "Shoe", Message: "Arrived late, box open"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestFromRecordsOptionalOrderID(t *testing.T) {
	header := []string{"Order_ID", "Complaint_ID", "Message", "Supplier", "Product", "Extra"}
	rows, err := FromRecords(header, [][]string{{"O9", "C9", "defect", "Zed", "Bag", "x"}, {"O10"}})
	if err != nil {
		t.Fatalf("FromRecords error: %v", err)
	}
	if rows[0].OrderID != "O9" || rows[0].Supplier != "Zed" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[1].ComplaintID != "" || rows[1].OrderID != "O10" {
		t.Fatalf("short record should yield empty fields, got %+v", rows[1])
	}
}

func TestMissingColumnsRejected(t *testing.T) {
	_, err := FromRecords([]string{"Complaint_ID", "Message", "Product"}, [][]string{{"C1", "damage", "Shoe"}})
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	var missing *MissingColumnsError
	if !errors.As(err, &missing) || len(missing.Missing) != 1 || missing.Missing[0] != "Supplier" {
		t.Fatalf("expected Supplier missing, got %v", err)
	}
}

func TestEmptyCSVRejected(t *testing.T) {
	if _, err := FromCSV(strings.NewReader("")); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}
